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

// Package raster converts vector paths into anti-aliased pixel coverage and
// provides a software drawing surface on top of this.
package raster

import (
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// EmitFunc receives the coverage values of one row of pixels, starting at
// pixel (xMin, y).  The slice is only valid during the call.
type EmitFunc func(y, xMin int, coverage []float32)

// edge is a line segment in device coordinates.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64 // (x1-x0)/(y1-y0)
}

// Rasterizer computes, for every pixel touched by a path, the fraction of
// the pixel area covered by the filled or stroked path.  Buffers are reused
// between calls.
//
// A Rasterizer is not safe for concurrent use.
type Rasterizer struct {
	// CTM maps user space to device space.  It must be non-singular.
	CTM matrix.Matrix

	// Clip restricts the output to this device space rectangle.
	// The coordinates must be integers.
	Clip rect.Rect

	// Flatness is the maximal distance, in device pixels, between a curve
	// and the line segments which approximate it.
	Flatness float64

	// Width is the stroke width in user space units.
	Width float64

	Cap        graphics.LineCapStyle
	Join       graphics.LineJoinStyle
	MiterLimit float64

	// Dash gives alternating on/off lengths in user space units.
	// Nil means solid lines.  Invalid patterns are ignored.
	Dash      []float64
	DashPhase float64

	edges       []edge
	cover, area []float32
	rowUsed     []bool

	// device space bounding box of the edges
	bboxEmpty        bool
	devXMin, devXMax float64
	devYMin, devYMax float64

	// stroke buffers
	lines   []polyline
	dashed  []polyline
	outline [][]vec.Vec2
	pattern []float64
}

// NewRasterizer returns a Rasterizer for the given clip rectangle,
// with the identity transformation and a stroke width of 1.
func NewRasterizer(clip rect.Rect) *Rasterizer {
	return &Rasterizer{
		CTM:        matrix.Identity,
		Clip:       clip,
		Flatness:   defaultFlatness,
		Width:      1,
		Cap:        graphics.LineCapButt,
		Join:       graphics.LineJoinMiter,
		MiterLimit: defaultMiterLimit,
	}
}

const (
	defaultFlatness   = 0.25
	defaultMiterLimit = 10

	// edges with a smaller vertical extent do not contribute coverage
	horizontalEdgeThreshold = 1e-10
)

// FillNonZero fills p using the nonzero winding rule.
func (r *Rasterizer) FillNonZero(p *path.Data, emit EmitFunc) {
	r.beginEdges()
	r.walk(p, r.addEdge, true)
	r.rasterize(nonZero, emit)
}

// FillEvenOdd fills p using the even-odd rule.
func (r *Rasterizer) FillEvenOdd(p *path.Data, emit EmitFunc) {
	r.beginEdges()
	r.walk(p, r.addEdge, true)
	r.rasterize(evenOdd, emit)
}

type fillRule int

const (
	nonZero fillRule = iota
	evenOdd
)

// linear applies the linear part of the CTM to v.
func (r *Rasterizer) linear(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: r.CTM[0]*v.X + r.CTM[2]*v.Y,
		Y: r.CTM[1]*v.X + r.CTM[3]*v.Y,
	}
}

// toDevice maps a point from user space to device space.
func (r *Rasterizer) toDevice(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: r.CTM[0]*v.X + r.CTM[2]*v.Y + r.CTM[4],
		Y: r.CTM[1]*v.X + r.CTM[3]*v.Y + r.CTM[5],
	}
}

// walk flattens p and calls line for every segment, in user space.
// If closeAll is set, open subpaths are closed implicitly, as needed
// for filling.
func (r *Rasterizer) walk(p *path.Data, line func(a, b vec.Vec2), closeAll bool) {
	var cur, start vec.Vec2
	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			if closeAll && cur != start {
				line(cur, start)
			}
			cur = p.Coords[k]
			start = cur
			k++
		case path.CmdLineTo:
			line(cur, p.Coords[k])
			cur = p.Coords[k]
			k++
		case path.CmdQuadTo:
			r.flattenQuad(cur, p.Coords[k], p.Coords[k+1], line)
			cur = p.Coords[k+1]
			k += 2
		case path.CmdCubeTo:
			r.flattenCubic(cur, p.Coords[k], p.Coords[k+1], p.Coords[k+2], line)
			cur = p.Coords[k+2]
			k += 3
		case path.CmdClose:
			if cur != start {
				line(cur, start)
			}
			cur = start
		}
	}
	if closeAll && cur != start {
		line(cur, start)
	}
}

// flattenQuad approximates a quadratic Bézier curve by line segments.
// The number of segments is chosen from the device space size of the
// curve's deviation from its chord.
func (r *Rasterizer) flattenQuad(p0, p1, p2 vec.Vec2, line func(a, b vec.Vec2)) {
	dev := r.linear(p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25)).Length()
	n := 1
	if dev > r.Flatness {
		n = int(math.Ceil(math.Sqrt(dev / r.Flatness)))
	}

	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s).Add(p1.Mul(2 * s * t)).Add(p2.Mul(t * t))
		line(prev, pt)
		prev = pt
	}
}

// flattenCubic approximates a cubic Bézier curve by line segments, using
// Wang's formula for the number of segments.
func (r *Rasterizer) flattenCubic(p0, p1, p2, p3 vec.Vec2, line func(a, b vec.Vec2)) {
	d1 := r.linear(p0.Sub(p1.Mul(2)).Add(p2)).Length()
	d2 := r.linear(p1.Sub(p2.Mul(2)).Add(p3)).Length()
	n := 1
	if m := max(d1, d2); m > 0 {
		if f := math.Sqrt(3 * m / (4 * r.Flatness)); f > 1 {
			n = int(math.Ceil(f))
		}
	}

	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s * s).
			Add(p1.Mul(3 * s * s * t)).
			Add(p2.Mul(3 * s * t * t)).
			Add(p3.Mul(t * t * t))
		line(prev, pt)
		prev = pt
	}
}

func (r *Rasterizer) beginEdges() {
	r.edges = r.edges[:0]
	r.bboxEmpty = true
}

// addEdge records the user space segment a-b in device coordinates.
func (r *Rasterizer) addEdge(a, b vec.Vec2) {
	p := r.toDevice(a)
	q := r.toDevice(b)

	dy := q.Y - p.Y
	if math.Abs(dy) < horizontalEdgeThreshold {
		return
	}
	r.edges = append(r.edges, edge{
		x0: p.X, y0: p.Y,
		x1: q.X, y1: q.Y,
		dxdy: (q.X - p.X) / dy,
	})

	if r.bboxEmpty {
		r.devXMin, r.devXMax = p.X, p.X
		r.devYMin, r.devYMax = p.Y, p.Y
		r.bboxEmpty = false
	}
	r.devXMin = min(r.devXMin, p.X, q.X)
	r.devXMax = max(r.devXMax, p.X, q.X)
	r.devYMin = min(r.devYMin, p.Y, q.Y)
	r.devYMax = max(r.devYMax, p.Y, q.Y)
}

// Coverage model: every pixel keeps a "cover" value, the signed vertical
// extent of all edge pieces inside the pixel, and an "area" value, the
// part of that extent weighted by the horizontal distance from the
// pixel's right boundary.  Scanning a row from left to right, the coverage
// of a pixel is the cover carried in from the left plus the pixel's own
// area value.

// rasterize converts the collected edges into coverage rows.
func (r *Rasterizer) rasterize(rule fillRule, emit EmitFunc) {
	if len(r.edges) == 0 {
		return
	}

	xMin := max(int(math.Floor(r.devXMin)), int(r.Clip.LLx))
	xMax := min(int(math.Floor(r.devXMax))+1, int(r.Clip.URx))
	yMin := max(int(math.Floor(r.devYMin)), int(r.Clip.LLy))
	yMax := min(int(math.Floor(r.devYMax))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return
	}
	width := xMax - xMin
	height := yMax - yMin

	size := width * height
	r.cover = slices.Grow(r.cover[:0], size)[:size]
	r.area = slices.Grow(r.area[:0], size)[:size]
	clear(r.cover)
	clear(r.area)
	r.rowUsed = slices.Grow(r.rowUsed[:0], height)[:height]
	clear(r.rowUsed)

	for i := range r.edges {
		e := &r.edges[i]
		top := max(int(math.Floor(min(e.y0, e.y1))), yMin)
		bot := min(int(math.Floor(max(e.y0, e.y1)))+1, yMax)
		for y := top; y < bot; y++ {
			row := y - yMin
			lo := row * width
			accumulate(e, y, r.cover[lo:lo+width], r.area[lo:lo+width], xMin)
			r.rowUsed[row] = true
		}
	}

	for row := range height {
		if !r.rowUsed[row] {
			continue
		}
		lo := row * width
		cov := r.cover[lo : lo+width]
		integrate(cov, r.area[lo:lo+width], rule)
		if trimmed, offs := trimZeros(cov); trimmed != nil {
			emit(yMin+row, xMin+offs, trimmed)
		}
	}
}

// accumulate adds the part of e inside scanline y to the row buffers.
// Index 0 of the buffers corresponds to pixel x0.  Edge pieces left of
// the buffer contribute their full cover to the first pixel.
func accumulate(e *edge, y int, cover, area []float32, x0 int) {
	yTop := max(float64(y), min(e.y0, e.y1))
	yBot := min(float64(y+1), max(e.y0, e.y1))
	if yBot <= yTop {
		return
	}

	sign := float32(1)
	if e.y1 < e.y0 {
		sign = -1
	}

	xTop := e.x0 + e.dxdy*(yTop-e.y0)
	xBot := e.x0 + e.dxdy*(yBot-e.y0)
	left := int(math.Floor(min(xTop, xBot)))
	right := int(math.Floor(max(xTop, xBot)))
	x1 := x0 + len(cover)

	add := func(pix int, y0, y1 float64) {
		c := sign * float32(y1-y0)
		switch {
		case pix < x0:
			cover[0] += c
			area[0] += c
		case pix < x1:
			xm := e.x0 + e.dxdy*((y0+y1)/2-e.y0)
			cover[pix-x0] += c
			area[pix-x0] += c * float32(1-(xm-float64(pix)))
		}
	}

	if right < x0 {
		add(right, yTop, yBot)
		return
	}
	if left >= x1 {
		return
	}
	if left == right {
		add(left, yTop, yBot)
		return
	}

	// The edge crosses several pixel columns: split it at the column
	// boundaries.
	dydx := 1 / e.dxdy
	for pix := left; pix <= right; pix++ {
		ya := e.y0 + dydx*(float64(pix)-e.x0)
		yb := e.y0 + dydx*(float64(pix+1)-e.x0)
		lo := max(min(ya, yb), yTop)
		hi := min(max(ya, yb), yBot)
		if hi > lo {
			add(pix, lo, hi)
		}
	}
}

// integrate turns the cover and area values of a row into coverage,
// in place.
func integrate(cover, area []float32, rule fillRule) {
	var acc float32
	for i := range cover {
		raw := acc + area[i]
		acc += cover[i]
		if raw < 0 {
			raw = -raw
		}
		if rule == evenOdd {
			raw -= 2 * float32(int(raw/2))
			if raw > 1 {
				raw = 2 - raw
			}
		} else if raw > 1 {
			raw = 1
		}
		cover[i] = raw
	}
}

// trimZeros returns the part of coverage between the first and last
// non-zero entries, together with its offset.
func trimZeros(coverage []float32) ([]float32, int) {
	lo := 0
	for lo < len(coverage) && coverage[lo] == 0 {
		lo++
	}
	if lo == len(coverage) {
		return nil, 0
	}
	hi := len(coverage)
	for coverage[hi-1] == 0 {
		hi--
	}
	return coverage[lo:hi], lo
}
