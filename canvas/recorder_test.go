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
	"image"
	"image/color"
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf/graphics"
)

var _ Canvas = (*Recorder)(nil)
var _ Resizer = (*Recorder)(nil)

func TestRecorder(t *testing.T) {
	r := NewRecorder(10, 20)
	r.Save()
	r.Transform(matrix.Identity)
	r.SetFillColor(color.NRGBA{R: 255, A: 128})
	r.SetStrokeColor(Transparent)
	r.SetLineCap(graphics.LineCapRound)
	r.SetLineJoin(graphics.LineJoinBevel)
	r.SetLineDash([]float64{1, 2})
	r.DrawImage(image.NewRGBA(image.Rect(0, 0, 3, 4)), 1, 2)
	r.Restore()

	want := "Save\n" +
		"Transform 1 0 0 1 0 0\n" +
		"SetFillColor rgba(255,0,0,128)\n" +
		"SetStrokeColor rgba(0,0,0,0)\n" +
		"SetLineCap round\n" +
		"SetLineJoin bevel\n" +
		"SetLineDash [1 2]\n" +
		"DrawImage 3x4 1 2\n" +
		"Restore"
	if got := r.String(); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}

	if n := r.Count("Save"); n != 1 {
		t.Errorf("Count(Save) = %d", n)
	}
	if n := r.Count("SetLineDash"); n != 1 {
		t.Errorf("Count(SetLineDash) = %d", n)
	}
	r.Reset()
	if len(r.Calls) != 0 {
		t.Error("Reset kept calls")
	}
}
