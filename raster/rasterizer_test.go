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
	"math"
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}

func rectangle(x0, y0, x1, y1 float64) *path.Data {
	return (&path.Data{}).
		MoveTo(pt(x0, y0)).
		LineTo(pt(x1, y0)).
		LineTo(pt(x1, y1)).
		LineTo(pt(x0, y1)).
		Close()
}

// coverageMap renders into a w×h buffer of coverage values.
type coverageMap struct {
	w, h int
	val  []float64
}

func newCoverageMap(w, h int) *coverageMap {
	return &coverageMap{w: w, h: h, val: make([]float64, w*h)}
}

func (m *coverageMap) emit(y, xMin int, coverage []float32) {
	for i, c := range coverage {
		m.val[y*m.w+xMin+i] = float64(c)
	}
}

func (m *coverageMap) at(x, y int) float64 {
	return m.val[y*m.w+x]
}

func (m *coverageMap) sum() float64 {
	s := 0.0
	for _, v := range m.val {
		s += v
	}
	return s
}

func clipFor(w, h int) rect.Rect {
	return rect.Rect{URx: float64(w), URy: float64(h)}
}

// TestTriangleCoverage checks exact coverage values for a simple triangle.
// The triangle (0,0)→(10,0)→(10,1) has a diagonal edge y = x/10, so pixel
// x has coverage (2x+1)/20.
func TestTriangleCoverage(t *testing.T) {
	p := (&path.Data{}).
		MoveTo(pt(0, 0)).
		LineTo(pt(10, 0)).
		LineTo(pt(10, 1)).
		Close()

	m := newCoverageMap(10, 1)
	r := NewRasterizer(clipFor(10, 1))
	r.FillNonZero(p, m.emit)

	for x := range 10 {
		want := float64(2*x+1) / 20
		if got := m.at(x, 0); math.Abs(got-want) > 1e-6 {
			t.Errorf("pixel %d: coverage %.4f, want %.4f", x, got, want)
		}
	}
}

func TestFillRectangle(t *testing.T) {
	m := newCoverageMap(10, 10)
	r := NewRasterizer(clipFor(10, 10))
	r.FillNonZero(rectangle(2, 2, 8, 8), m.emit)

	for y := range 10 {
		for x := range 10 {
			want := 0.0
			if x >= 2 && x < 8 && y >= 2 && y < 8 {
				want = 1
			}
			if got := m.at(x, y); math.Abs(got-want) > 1e-6 {
				t.Errorf("pixel (%d,%d): coverage %g, want %g", x, y, got, want)
			}
		}
	}
}

func TestFillHalfPixel(t *testing.T) {
	m := newCoverageMap(4, 4)
	r := NewRasterizer(clipFor(4, 4))
	r.FillNonZero(rectangle(1.5, 1, 3, 2), m.emit)

	if got := m.at(1, 1); math.Abs(got-0.5) > 1e-6 {
		t.Errorf("left pixel coverage %g, want 0.5", got)
	}
	if got := m.at(2, 1); math.Abs(got-1) > 1e-6 {
		t.Errorf("right pixel coverage %g, want 1", got)
	}
}

func TestFillRules(t *testing.T) {
	// two nested squares with the same orientation
	p := rectangle(0, 0, 10, 10)
	p.MoveTo(pt(3, 3)).
		LineTo(pt(7, 3)).
		LineTo(pt(7, 7)).
		LineTo(pt(3, 7)).
		Close()

	nz := newCoverageMap(10, 10)
	r := NewRasterizer(clipFor(10, 10))
	r.FillNonZero(p, nz.emit)
	if got := nz.at(5, 5); got != 1 {
		t.Errorf("nonzero: centre coverage %g, want 1", got)
	}

	eo := newCoverageMap(10, 10)
	r.FillEvenOdd(p, eo.emit)
	if got := eo.at(5, 5); got != 0 {
		t.Errorf("even-odd: centre coverage %g, want 0", got)
	}
	if got := eo.at(1, 1); got != 1 {
		t.Errorf("even-odd: ring coverage %g, want 1", got)
	}
}

func TestFillTransformed(t *testing.T) {
	m := newCoverageMap(20, 20)
	r := NewRasterizer(clipFor(20, 20))
	r.CTM = matrix.Matrix{2, 0, 0, 2, 4, 4}
	r.FillNonZero(rectangle(0, 0, 5, 5), m.emit)

	if got := m.sum(); math.Abs(got-100) > 1e-6 {
		t.Errorf("covered area %g, want 100", got)
	}
	if m.at(4, 4) != 1 || m.at(13, 13) != 1 || m.at(14, 14) != 0 || m.at(3, 3) != 0 {
		t.Error("transformed square at the wrong position")
	}
}

func TestFillClipped(t *testing.T) {
	m := newCoverageMap(10, 10)
	r := NewRasterizer(clipFor(10, 10))
	r.FillNonZero(rectangle(-20, -20, 5, 5), m.emit)
	if got := m.sum(); math.Abs(got-25) > 1e-6 {
		t.Errorf("covered area %g, want 25", got)
	}
}

func TestStrokeLine(t *testing.T) {
	tests := []struct {
		name string
		cap  graphics.LineCapStyle
		area float64
	}{
		{"butt", graphics.LineCapButt, 12},
		{"square", graphics.LineCapSquare, 16},
		{"round", graphics.LineCapRound, 12 + math.Pi},
	}
	// round caps are polygons; a small flatness brings their area
	// close to that of a disc
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := (&path.Data{}).MoveTo(pt(4, 10)).LineTo(pt(10, 10))

			m := newCoverageMap(20, 20)
			r := NewRasterizer(clipFor(20, 20))
			r.Width = 2
			r.Cap = tc.cap
			r.Flatness = 0.01
			r.Stroke(p, m.emit)

			if got := m.sum(); math.Abs(got-tc.area) > 0.1 {
				t.Errorf("stroke area %g, want %g", got, tc.area)
			}
			if got := m.at(6, 9); math.Abs(got-1) > 1e-6 {
				t.Errorf("pixel on the line has coverage %g", got)
			}
		})
	}
}

func TestStrokeDot(t *testing.T) {
	p := (&path.Data{}).MoveTo(pt(10, 10)).LineTo(pt(10, 10))

	m := newCoverageMap(20, 20)
	r := NewRasterizer(clipFor(20, 20))
	r.Width = 4
	r.Cap = graphics.LineCapRound
	r.Flatness = 0.01
	r.Stroke(p, m.emit)
	if got := m.sum(); math.Abs(got-4*math.Pi) > 0.2 {
		t.Errorf("dot area %g, want %g", got, 4*math.Pi)
	}

	m = newCoverageMap(20, 20)
	r.Cap = graphics.LineCapButt
	r.Stroke(p, m.emit)
	if got := m.sum(); got != 0 {
		t.Errorf("butt dot area %g, want 0", got)
	}

	// a bare MoveTo draws nothing
	m = newCoverageMap(20, 20)
	r.Cap = graphics.LineCapRound
	r.Stroke((&path.Data{}).MoveTo(pt(5, 5)), m.emit)
	if got := m.sum(); got != 0 {
		t.Errorf("bare move area %g, want 0", got)
	}
}

func TestStrokeDash(t *testing.T) {
	p := (&path.Data{}).MoveTo(pt(0, 5)).LineTo(pt(10, 5))

	m := newCoverageMap(12, 10)
	r := NewRasterizer(clipFor(12, 10))
	r.Width = 2
	r.Dash = []float64{2, 2}
	r.Stroke(p, m.emit)

	if got := m.sum(); math.Abs(got-12) > 1e-6 {
		t.Errorf("dashed area %g, want 12", got)
	}
	for x, want := range []float64{1, 1, 0, 0, 1, 1, 0, 0, 1, 1} {
		if got := m.at(x, 4); math.Abs(got-want) > 1e-6 {
			t.Errorf("pixel %d: coverage %g, want %g", x, got, want)
		}
	}

	// an odd pattern is repeated: on 3, off 1, on 1, off 3, on 1, off 1
	m = newCoverageMap(12, 10)
	r.Dash = []float64{3, 1, 1}
	r.Stroke(p, m.emit)
	for x, want := range []float64{1, 1, 1, 0, 1, 0, 0, 0, 1, 0} {
		if got := m.at(x, 4); math.Abs(got-want) > 1e-6 {
			t.Errorf("odd pattern pixel %d: coverage %g, want %g", x, got, want)
		}
	}

	// invalid patterns give solid lines
	m = newCoverageMap(12, 10)
	r.Dash = []float64{0, 0}
	r.Stroke(p, m.emit)
	if got := m.sum(); math.Abs(got-20) > 1e-6 {
		t.Errorf("all-zero pattern area %g, want 20", got)
	}
}

func TestStrokeJoins(t *testing.T) {
	// a right angle corner at (10, 10)
	p := (&path.Data{}).
		MoveTo(pt(2, 10)).
		LineTo(pt(10, 10)).
		LineTo(pt(10, 2))

	area := func(join graphics.LineJoinStyle) float64 {
		m := newCoverageMap(20, 20)
		r := NewRasterizer(clipFor(20, 20))
		r.Width = 4
		r.Join = join
		r.Flatness = 0.01
		r.Stroke(p, m.emit)
		return m.sum()
	}

	miter := area(graphics.LineJoinMiter)
	round := area(graphics.LineJoinRound)
	bevel := area(graphics.LineJoinBevel)

	// Both segments cover 8×4, overlapping in a 2×2 square; the outer
	// corner adds 2 (bevel), π (round) or 4 (miter).
	base := 2*32 - 4.0
	checks := []struct {
		name      string
		got, want float64
	}{
		{"bevel", bevel, base + 2},
		{"round", round, base + math.Pi},
		{"miter", miter, base + 4},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 0.1 {
			t.Errorf("%s join: area %g, want %g", c.name, c.got, c.want)
		}
	}
}

func TestMiterLimit(t *testing.T) {
	// a sharp spike, where the miter is much longer than the line width
	p := (&path.Data{}).
		MoveTo(pt(2, 30)).
		LineTo(pt(20, 10)).
		LineTo(pt(38, 30))

	area := func(limit float64) float64 {
		m := newCoverageMap(40, 40)
		r := NewRasterizer(clipFor(40, 40))
		r.Width = 2
		r.MiterLimit = limit
		r.Stroke(p, m.emit)
		return m.sum()
	}
	if long, short := area(10), area(1); long <= short {
		t.Errorf("miter join area %g not larger than bevelled area %g", long, short)
	}
}

func TestStrokeClosed(t *testing.T) {
	m := newCoverageMap(20, 20)
	r := NewRasterizer(clipFor(20, 20))
	r.Width = 2
	r.Stroke(rectangle(5, 5, 15, 15), m.emit)

	// outer 12×12 minus inner 8×8
	if got := m.sum(); math.Abs(got-80) > 1e-3 {
		t.Errorf("closed stroke area %g, want 80", got)
	}
	if m.at(10, 10) != 0 {
		t.Error("stroke filled the interior")
	}
}
