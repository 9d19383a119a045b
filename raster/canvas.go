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

package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// Canvas is a drawing surface backed by an *image.RGBA.
// It implements the canvas.Canvas interface.
type Canvas struct {
	img   *image.RGBA
	r     *Rasterizer
	state drawState
	stack []drawState

	path       path.Data
	cur, start vec.Vec2
	hasCurrent bool
}

type drawState struct {
	ctm    matrix.Matrix
	alpha  float64
	fill   color.NRGBA
	stroke color.NRGBA
	width  float64
	cap    graphics.LineCapStyle
	join   graphics.LineJoinStyle
	miter  float64
	dash   []float64

	// clip is the clip mask in device space, nil if nothing is clipped
	clip *image.Alpha
}

// NewCanvas allocates a transparent canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	return NewCanvasFor(image.NewRGBA(image.Rect(0, 0, width, height)))
}

// NewCanvasFor returns a canvas drawing onto img.  The bounds of img must
// start at the origin.
func NewCanvasFor(img *image.RGBA) *Canvas {
	c := &Canvas{img: img}
	c.r = NewRasterizer(c.clipRect())
	c.state = defaultState()
	return c
}

func defaultState() drawState {
	return drawState{
		ctm:    matrix.Identity,
		alpha:  1,
		fill:   color.NRGBA{A: 255},
		stroke: color.NRGBA{A: 255},
		width:  1,
		cap:    graphics.LineCapButt,
		join:   graphics.LineJoinMiter,
		miter:  defaultMiterLimit,
	}
}

func (c *Canvas) clipRect() rect.Rect {
	b := c.img.Bounds()
	return rect.Rect{LLx: 0, LLy: 0, URx: float64(b.Dx()), URy: float64(b.Dy())}
}

// Image returns the image the canvas draws on.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Width returns the width of the canvas in pixels.
func (c *Canvas) Width() int { return c.img.Bounds().Dx() }

// Height returns the height of the canvas in pixels.
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

// Resize replaces the pixel buffer by a transparent one of the given size
// and resets the drawing state.
func (c *Canvas) Resize(width, height int) {
	if width == c.Width() && height == c.Height() {
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
	c.r.Clip = c.clipRect()
	c.state = defaultState()
	c.stack = c.stack[:0]
	c.BeginPath()
}

func (c *Canvas) Save() {
	s := c.state
	s.dash = append([]float64(nil), c.state.dash...)
	c.stack = append(c.stack, s)
}

// Restore restores the most recently saved state.  Unbalanced calls are
// ignored.
func (c *Canvas) Restore() {
	n := len(c.stack)
	if n == 0 {
		return
	}
	c.state = c.stack[n-1]
	c.stack = c.stack[:n-1]
}

func (c *Canvas) Transform(m matrix.Matrix) {
	c.state.ctm = multiply(m, c.state.ctm)
}

// multiply returns the transformation which applies m first and then n.
func multiply(m, n matrix.Matrix) matrix.Matrix {
	return matrix.Matrix{
		n[0]*m[0] + n[2]*m[1],
		n[1]*m[0] + n[3]*m[1],
		n[0]*m[2] + n[2]*m[3],
		n[1]*m[2] + n[3]*m[3],
		n[0]*m[4] + n[2]*m[5] + n[4],
		n[1]*m[4] + n[3]*m[5] + n[5],
	}
}

func (c *Canvas) SetGlobalAlpha(alpha float64) {
	if alpha >= 0 && alpha <= 1 {
		c.state.alpha = alpha
	}
}

func (c *Canvas) SetFillColor(col color.Color) {
	c.state.fill = color.NRGBAModel.Convert(col).(color.NRGBA)
}

func (c *Canvas) SetStrokeColor(col color.Color) {
	c.state.stroke = color.NRGBAModel.Convert(col).(color.NRGBA)
}

func (c *Canvas) SetLineWidth(w float64) {
	if w > 0 && !math.IsInf(w, 0) {
		c.state.width = w
	}
}

func (c *Canvas) SetLineCap(lc graphics.LineCapStyle)   { c.state.cap = lc }
func (c *Canvas) SetLineJoin(lj graphics.LineJoinStyle) { c.state.join = lj }

func (c *Canvas) SetMiterLimit(limit float64) {
	if limit > 0 && !math.IsInf(limit, 0) {
		c.state.miter = limit
	}
}

func (c *Canvas) SetLineDash(pattern []float64) {
	for _, d := range pattern {
		if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return
		}
	}
	c.state.dash = append(c.state.dash[:0:0], pattern...)
}

func (c *Canvas) BeginPath() {
	c.path.Cmds = c.path.Cmds[:0]
	c.path.Coords = c.path.Coords[:0]
	c.hasCurrent = false
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (c *Canvas) MoveTo(x, y float64) {
	if !finite(x, y) {
		return
	}
	p := vec.Vec2{X: x, Y: y}
	c.path.MoveTo(p)
	c.cur, c.start = p, p
	c.hasCurrent = true
}

// ensureCurrent starts a subpath at p if there is no current point.
func (c *Canvas) ensureCurrent(p vec.Vec2) {
	if !c.hasCurrent {
		c.MoveTo(p.X, p.Y)
	}
}

func (c *Canvas) LineTo(x, y float64) {
	if !finite(x, y) {
		return
	}
	p := vec.Vec2{X: x, Y: y}
	if !c.hasCurrent {
		c.MoveTo(x, y)
		return
	}
	c.path.LineTo(p)
	c.cur = p
}

func (c *Canvas) QuadTo(cx, cy, x, y float64) {
	if !finite(cx, cy, x, y) {
		return
	}
	ctrl := vec.Vec2{X: cx, Y: cy}
	c.ensureCurrent(ctrl)
	p := vec.Vec2{X: x, Y: y}
	c.path.QuadTo(ctrl, p)
	c.cur = p
}

func (c *Canvas) CubeTo(c1x, c1y, c2x, c2y, x, y float64) {
	if !finite(c1x, c1y, c2x, c2y, x, y) {
		return
	}
	c1 := vec.Vec2{X: c1x, Y: c1y}
	c.ensureCurrent(c1)
	p := vec.Vec2{X: x, Y: y}
	c.path.CubeTo(c1, vec.Vec2{X: c2x, Y: c2y}, p)
	c.cur = p
}

func (c *Canvas) ArcTo(x1, y1, x2, y2, radius float64) {
	if !finite(x1, y1, x2, y2, radius) || radius < 0 {
		return
	}
	p1 := vec.Vec2{X: x1, Y: y1}
	if !c.hasCurrent {
		c.MoveTo(x1, y1)
		return
	}
	p0 := c.cur
	p2 := vec.Vec2{X: x2, Y: y2}

	u := p0.Sub(p1)
	v := p2.Sub(p1)
	lu, lv := u.Length(), v.Length()
	cross := u.X*v.Y - u.Y*v.X
	if radius == 0 || lu < zeroLength || lv < zeroLength || math.Abs(cross) < 1e-12*lu*lv {
		c.LineTo(x1, y1)
		return
	}
	u = u.Mul(1 / lu)
	v = v.Mul(1 / lv)

	// theta is the angle at p1 between the two lines.
	theta := math.Acos(max(-1, min(1, u.Dot(v))))
	dist := radius / math.Tan(theta/2)
	t1 := p1.Add(u.Mul(dist))
	t2 := p1.Add(v.Mul(dist))
	c.LineTo(t1.X, t1.Y)

	// The arc sweeps the angle pi - theta around the center.
	bis := unit(u.Add(v))
	center := p1.Add(bis.Mul(radius / math.Sin(theta/2)))
	a0 := math.Atan2(t1.Y-center.Y, t1.X-center.X)
	a1 := math.Atan2(t2.Y-center.Y, t2.X-center.X)
	sweep := a1 - a0
	for sweep > math.Pi {
		sweep -= 2 * math.Pi
	}
	for sweep < -math.Pi {
		sweep += 2 * math.Pi
	}
	c.arc(center, radius, a0, sweep)
}

// arc appends a circular arc, starting at the current point, as cubic
// Bézier segments of at most 90 degrees each.
func (c *Canvas) arc(center vec.Vec2, radius, start, sweep float64) {
	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	if n == 0 {
		return
	}
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	for i := range n {
		a := start + float64(i)*step
		b := a + step
		ca, sa := math.Cos(a), math.Sin(a)
		cb, sb := math.Cos(b), math.Sin(b)
		c1 := vec.Vec2{X: center.X + radius*(ca-k*sa), Y: center.Y + radius*(sa+k*ca)}
		c2 := vec.Vec2{X: center.X + radius*(cb+k*sb), Y: center.Y + radius*(sb-k*cb)}
		end := vec.Vec2{X: center.X + radius*cb, Y: center.Y + radius*sb}
		c.path.CubeTo(c1, c2, end)
		c.cur = end
	}
}

func (c *Canvas) ClosePath() {
	if !c.hasCurrent {
		return
	}
	c.path.Close()
	c.cur = c.start
}

func (c *Canvas) Fill() {
	if c.state.fill.A == 0 || c.state.alpha == 0 {
		return
	}
	c.r.CTM = c.state.ctm
	c.r.FillNonZero(&c.path, c.painter(c.state.fill))
}

func (c *Canvas) Stroke() {
	if c.state.stroke.A == 0 || c.state.alpha == 0 {
		return
	}
	r := c.r
	r.CTM = c.state.ctm
	r.Width = c.state.width
	r.Cap = c.state.cap
	r.Join = c.state.join
	r.MiterLimit = c.state.miter
	r.Dash = c.state.dash
	r.Stroke(&c.path, c.painter(c.state.stroke))
}

// Clip intersects the clip mask with the current path.
func (c *Canvas) Clip() {
	mask := image.NewAlpha(c.img.Bounds())
	c.r.CTM = c.state.ctm
	old := c.state.clip
	c.r.FillNonZero(&c.path, func(y, xMin int, coverage []float32) {
		row := mask.Pix[y*mask.Stride:]
		for i, cov := range coverage {
			a := cov * 255
			if old != nil {
				a = a * float32(old.Pix[y*old.Stride+xMin+i]) / 255
			}
			row[xMin+i] = uint8(a + 0.5)
		}
	})
	c.state.clip = mask
}

// painter returns an EmitFunc which composites col onto the canvas.
func (c *Canvas) painter(col color.NRGBA) EmitFunc {
	alpha := float32(col.A) / 255 * float32(c.state.alpha)
	sr, sg, sb := float32(col.R), float32(col.G), float32(col.B)
	clip := c.state.clip
	return func(y, xMin int, coverage []float32) {
		for i, cov := range coverage {
			a := cov * alpha
			x := xMin + i
			if clip != nil {
				a *= float32(clip.Pix[y*clip.Stride+x]) / 255
			}
			if a <= 0 {
				continue
			}
			c.blend(x, y, sr*a, sg*a, sb*a, a)
		}
	}
}

// blend composites a premultiplied source pixel over the destination.
// The color channels are in the range 0 to 255, a is in the range 0 to 1.
func (c *Canvas) blend(x, y int, r, g, b, a float32) {
	off := c.img.PixOffset(x, y)
	pix := c.img.Pix[off : off+4 : off+4]
	k := 1 - a
	pix[0] = clamp8(r + float32(pix[0])*k)
	pix[1] = clamp8(g + float32(pix[1])*k)
	pix[2] = clamp8(b + float32(pix[2])*k)
	pix[3] = clamp8(255*a + float32(pix[3])*k)
}

func clamp8(v float32) uint8 {
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v + 0.5)
}

// DrawImage draws img at (x, y) in user space, at its natural size.
func (c *Canvas) DrawImage(img image.Image, x, y float64) {
	b := img.Bounds()
	c.DrawImageScaled(img, x, y, float64(b.Dx()), float64(b.Dy()))
}

// DrawImageScaled draws img into the user space rectangle (x, y, w, h).
//
// The image is first resampled into a scratch layer covering its device
// space bounding box, which is then composited using the global alpha
// value and the clip mask.
func (c *Canvas) DrawImageScaled(img image.Image, x, y, w, h float64) {
	b := img.Bounds()
	if b.Empty() || w == 0 || h == 0 || c.state.alpha == 0 {
		return
	}
	sx := w / float64(b.Dx())
	sy := h / float64(b.Dy())
	place := matrix.Matrix{sx, 0, 0, sy, x - float64(b.Min.X)*sx, y - float64(b.Min.Y)*sy}
	m := multiply(place, c.state.ctm)

	area := deviceBounds(m, b).Intersect(c.img.Bounds())
	if area.Empty() {
		return
	}
	layer := image.NewRGBA(area)
	aff := f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
	draw.BiLinear.Transform(layer, aff, img, b, draw.Src, nil)

	alpha := float32(c.state.alpha)
	clip := c.state.clip
	for py := area.Min.Y; py < area.Max.Y; py++ {
		for px := area.Min.X; px < area.Max.X; px++ {
			off := layer.PixOffset(px, py)
			s := layer.Pix[off : off+4 : off+4]
			if s[3] == 0 {
				continue
			}
			k := alpha
			if clip != nil {
				k *= float32(clip.Pix[py*clip.Stride+px]) / 255
			}
			if k <= 0 {
				continue
			}
			c.blend(px, py, float32(s[0])*k, float32(s[1])*k, float32(s[2])*k, float32(s[3])/255*k)
		}
	}
}

// deviceBounds returns the pixel rectangle covered by the image of r
// under m.
func deviceBounds(m matrix.Matrix, r image.Rectangle) image.Rectangle {
	xs := [2]float64{float64(r.Min.X), float64(r.Max.X)}
	ys := [2]float64{float64(r.Min.Y), float64(r.Max.Y)}
	xMin, yMin := math.Inf(1), math.Inf(1)
	xMax, yMax := math.Inf(-1), math.Inf(-1)
	for _, x := range xs {
		for _, y := range ys {
			dx := m[0]*x + m[2]*y + m[4]
			dy := m[1]*x + m[3]*y + m[5]
			xMin, xMax = min(xMin, dx), max(xMax, dx)
			yMin, yMax = min(yMin, dy), max(yMax, dy)
		}
	}
	const limit = 1 << 24
	if !finite(xMin, xMax, yMin, yMax) || xMax-xMin > limit || yMax-yMin > limit {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(xMin)), int(math.Floor(yMin)),
		int(math.Ceil(xMax)), int(math.Ceil(yMax)),
	)
}

// Clear sets all pixels to transparent black.
func (c *Canvas) Clear() {
	clear(c.img.Pix)
}
