// seehuhn.de/go/svga - SVGA animation playback
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package canvas

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf/graphics"
)

// Recorder is a Canvas which records the calls made on it.
// It is used to inspect the output of the renderer.
type Recorder struct {
	W, H  int
	Calls []string
}

// NewRecorder returns a Recorder for a surface of the given size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{W: width, H: height}
}

// String returns the recorded calls, one per line.
func (r *Recorder) String() string {
	return strings.Join(r.Calls, "\n")
}

// Reset discards all recorded calls.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
}

// Count returns the number of recorded calls with the given name.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls {
		if c == name || strings.HasPrefix(c, name+" ") {
			n++
		}
	}
	return n
}

func (r *Recorder) add(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

func (r *Recorder) Width() int  { return r.W }
func (r *Recorder) Height() int { return r.H }

func (r *Recorder) Resize(width, height int) {
	r.W, r.H = width, height
	r.add("Resize %d %d", width, height)
}

func (r *Recorder) Save()    { r.add("Save") }
func (r *Recorder) Restore() { r.add("Restore") }

func (r *Recorder) Transform(m matrix.Matrix) {
	r.add("Transform %g %g %g %g %g %g", m[0], m[1], m[2], m[3], m[4], m[5])
}

func (r *Recorder) SetGlobalAlpha(alpha float64) { r.add("SetGlobalAlpha %g", alpha) }

func (r *Recorder) SetFillColor(c color.Color) {
	r.add("SetFillColor %s", formatColor(c))
}

func (r *Recorder) SetStrokeColor(c color.Color) {
	r.add("SetStrokeColor %s", formatColor(c))
}

func (r *Recorder) SetLineWidth(w float64) { r.add("SetLineWidth %g", w) }

func (r *Recorder) SetLineCap(c graphics.LineCapStyle) {
	r.add("SetLineCap %s", capName(c))
}

func (r *Recorder) SetLineJoin(j graphics.LineJoinStyle) {
	r.add("SetLineJoin %s", joinName(j))
}

func (r *Recorder) SetMiterLimit(limit float64) { r.add("SetMiterLimit %g", limit) }

func (r *Recorder) SetLineDash(pattern []float64) { r.add("SetLineDash %v", pattern) }

func (r *Recorder) BeginPath()          { r.add("BeginPath") }
func (r *Recorder) MoveTo(x, y float64) { r.add("MoveTo %g %g", x, y) }
func (r *Recorder) LineTo(x, y float64) { r.add("LineTo %g %g", x, y) }

func (r *Recorder) QuadTo(cx, cy, x, y float64) {
	r.add("QuadTo %g %g %g %g", cx, cy, x, y)
}

func (r *Recorder) CubeTo(c1x, c1y, c2x, c2y, x, y float64) {
	r.add("CubeTo %g %g %g %g %g %g", c1x, c1y, c2x, c2y, x, y)
}

func (r *Recorder) ArcTo(x1, y1, x2, y2, radius float64) {
	r.add("ArcTo %g %g %g %g %g", x1, y1, x2, y2, radius)
}

func (r *Recorder) ClosePath() { r.add("ClosePath") }
func (r *Recorder) Fill()      { r.add("Fill") }
func (r *Recorder) Stroke()    { r.add("Stroke") }
func (r *Recorder) Clip()      { r.add("Clip") }

func (r *Recorder) DrawImage(img image.Image, x, y float64) {
	b := img.Bounds()
	r.add("DrawImage %dx%d %g %g", b.Dx(), b.Dy(), x, y)
}

func (r *Recorder) DrawImageScaled(img image.Image, x, y, w, h float64) {
	b := img.Bounds()
	r.add("DrawImageScaled %dx%d %g %g %g %g", b.Dx(), b.Dy(), x, y, w, h)
}

func (r *Recorder) Clear() { r.add("Clear") }

// formatColor writes c as non-premultiplied rgba values.
func formatColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("rgba(%d,%d,%d,%d)", n.R, n.G, n.B, n.A)
}

func capName(c graphics.LineCapStyle) string {
	switch c {
	case graphics.LineCapButt:
		return "butt"
	case graphics.LineCapRound:
		return "round"
	case graphics.LineCapSquare:
		return "square"
	default:
		return "unknown"
	}
}

func joinName(j graphics.LineJoinStyle) string {
	switch j {
	case graphics.LineJoinMiter:
		return "miter"
	case graphics.LineJoinRound:
		return "round"
	case graphics.LineJoinBevel:
		return "bevel"
	default:
		return "unknown"
	}
}
