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

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// polyline is a flattened subpath in user space.
type polyline struct {
	pts    []vec.Vec2
	closed bool
}

const (
	// zeroLength is the length below which stroke segments are dropped.
	zeroLength = 1e-10

	// collinear is the threshold on the cross product of two unit
	// tangents below which no join is needed.
	collinear = 1e-6
)

// Stroke strokes p with the current line settings.
//
// The stroke outline is built in user space from one quadrilateral per
// segment, plus polygons for the joins and caps.  All pieces are given the
// same orientation and are filled together with the nonzero rule, which
// yields their union.
func (r *Rasterizer) Stroke(p *path.Data, emit EmitFunc) {
	if r.Width <= 0 {
		return
	}
	r.flattenSubpaths(p)

	lines := r.lines
	if r.setupDash() {
		r.dashed = r.dashed[:0]
		for _, pl := range r.lines {
			r.dashPolyline(pl)
		}
		lines = r.dashed
	}

	r.outline = r.outline[:0]
	for _, pl := range lines {
		r.strokePolyline(pl)
	}

	r.beginEdges()
	for _, poly := range r.outline {
		r.addPolygon(poly)
	}
	r.rasterize(nonZero, emit)
}

// flattenSubpaths splits p into polylines.  A subpath consisting of a
// single MoveTo is dropped.
func (r *Rasterizer) flattenSubpaths(p *path.Data) {
	r.lines = r.lines[:0]

	var cur *polyline // nil until the subpath has a drawing command
	var start, last vec.Vec2
	begin := func() {
		if cur == nil {
			r.lines = append(r.lines, polyline{pts: []vec.Vec2{last}})
			cur = &r.lines[len(r.lines)-1]
		}
	}
	line := func(_, b vec.Vec2) {
		cur.pts = append(cur.pts, b)
	}

	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			cur = nil
			last = p.Coords[k]
			start = last
			k++
		case path.CmdLineTo:
			begin()
			cur.pts = append(cur.pts, p.Coords[k])
			last = p.Coords[k]
			k++
		case path.CmdQuadTo:
			begin()
			r.flattenQuad(last, p.Coords[k], p.Coords[k+1], line)
			last = p.Coords[k+1]
			k += 2
		case path.CmdCubeTo:
			begin()
			r.flattenCubic(last, p.Coords[k], p.Coords[k+1], p.Coords[k+2], line)
			last = p.Coords[k+2]
			k += 3
		case path.CmdClose:
			begin()
			cur.closed = true
			cur = nil
			last = start
		}
	}
}

// setupDash prepares the dash pattern and reports whether dashing applies.
func (r *Rasterizer) setupDash() bool {
	if len(r.Dash) == 0 {
		return false
	}
	total := 0.0
	for _, d := range r.Dash {
		if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return false
		}
		total += d
	}
	if total <= 0 {
		return false
	}

	r.pattern = append(r.pattern[:0], r.Dash...)
	if len(r.pattern)%2 == 1 {
		r.pattern = append(r.pattern, r.Dash...)
	}
	return true
}

// dashPolyline splits pl into dashes, which are appended to r.dashed as
// open polylines.
func (r *Rasterizer) dashPolyline(pl polyline) {
	pts := pl.pts
	if pl.closed {
		pts = append(pts[:len(pts):len(pts)], pts[0])
	}
	if len(pts) < 2 {
		r.dashed = append(r.dashed, pl)
		return
	}

	total := 0.0
	for _, d := range r.pattern {
		total += d
	}
	phase := math.Mod(r.DashPhase, total)
	if phase < 0 {
		phase += total
	}
	idx := 0
	on := true
	for phase >= r.pattern[idx] {
		phase -= r.pattern[idx]
		idx = (idx + 1) % len(r.pattern)
		on = !on
	}
	remain := r.pattern[idx] - phase

	var cur []vec.Vec2
	if on {
		cur = []vec.Vec2{pts[0]}
	}
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		ab := b.Sub(a)
		segLen := ab.Length()
		pos := 0.0
		for segLen-pos > remain {
			pos += remain
			q := a.Add(ab.Mul(pos / segLen))
			if on {
				r.dashed = append(r.dashed, polyline{pts: append(cur, q)})
				cur = nil
			} else {
				cur = []vec.Vec2{q}
			}
			on = !on
			idx = (idx + 1) % len(r.pattern)
			remain = r.pattern[idx]
		}
		remain -= segLen - pos
		if on {
			cur = append(cur, b)
		}
	}
	if on && len(cur) > 0 {
		r.dashed = append(r.dashed, polyline{pts: cur})
	}
}

// strokePolyline adds the outline pieces of one polyline.
func (r *Rasterizer) strokePolyline(pl polyline) {
	d := r.Width / 2
	pts := dedupe(pl.pts)
	closed := pl.closed
	if closed && len(pts) > 2 && pts[0].Sub(pts[len(pts)-1]).Length() < zeroLength {
		pts = pts[:len(pts)-1]
	}

	n := len(pts)
	if n == 0 {
		return
	}
	if n == 1 {
		r.dot(pts[0], d)
		return
	}

	segs := n - 1
	if closed {
		segs = n
	}
	for i := range segs {
		r.segment(pts[i], pts[(i+1)%n], d)
	}

	if closed {
		for i := range n {
			r.join(pts[(i+n-1)%n], pts[i], pts[(i+1)%n], d)
		}
		return
	}
	for i := 1; i < n-1; i++ {
		r.join(pts[i-1], pts[i], pts[i+1], d)
	}
	r.lineCap(pts[0], pts[0].Sub(pts[1]), d)
	r.lineCap(pts[n-1], pts[n-1].Sub(pts[n-2]), d)
}

// dedupe removes consecutive repeated points.
func dedupe(pts []vec.Vec2) []vec.Vec2 {
	if len(pts) < 2 {
		return pts
	}
	out := make([]vec.Vec2, 1, len(pts))
	out[0] = pts[0]
	for _, p := range pts[1:] {
		if p.Sub(out[len(out)-1]).Length() >= zeroLength {
			out = append(out, p)
		}
	}
	return out
}

func unit(v vec.Vec2) vec.Vec2 {
	return v.Mul(1 / v.Length())
}

// perp rotates v by 90 degrees.
func perp(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: -v.Y, Y: v.X}
}

func (r *Rasterizer) segment(a, b vec.Vec2, d float64) {
	n := perp(unit(b.Sub(a))).Mul(d)
	r.outline = append(r.outline, []vec.Vec2{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)})
}

// join adds the join at p between the segments a-p and p-b.
func (r *Rasterizer) join(a, p, b vec.Vec2, d float64) {
	t1 := unit(p.Sub(a))
	t2 := unit(b.Sub(p))
	cross := t1.X*t2.Y - t1.Y*t2.X
	dot := t1.Dot(t2)
	if math.Abs(cross) < collinear && dot > 0 {
		return
	}

	if r.Join == graphics.LineJoinRound {
		r.circle(p, d)
		return
	}

	// The outer side of the corner is opposite to the turn direction.
	s := 1.0
	if cross > 0 {
		s = -1
	}
	n1 := perp(t1).Mul(s)
	n2 := perp(t2).Mul(s)
	o1 := p.Add(n1.Mul(d))
	o2 := p.Add(n2.Mul(d))

	if r.Join == graphics.LineJoinMiter {
		cosHalf := math.Sqrt(max(0, (1+dot)/2))
		if cosHalf > 1e-12 && 1/cosHalf <= r.MiterLimit {
			tip := p.Add(unit(n1.Add(n2)).Mul(d / cosHalf))
			r.outline = append(r.outline, []vec.Vec2{p, o1, tip, o2})
			return
		}
	}
	r.outline = append(r.outline, []vec.Vec2{p, o1, o2})
}

// lineCap adds the cap at the end point p of a line.  The vector out
// points away from the line.
func (r *Rasterizer) lineCap(p, out vec.Vec2, d float64) {
	switch r.Cap {
	case graphics.LineCapRound:
		r.circle(p, d)
	case graphics.LineCapSquare:
		u := unit(out).Mul(d)
		n := perp(u)
		r.outline = append(r.outline, []vec.Vec2{
			p.Add(n), p.Add(n).Add(u), p.Sub(n).Add(u), p.Sub(n),
		})
	}
}

// dot marks a subpath which has zero length.
func (r *Rasterizer) dot(p vec.Vec2, d float64) {
	switch r.Cap {
	case graphics.LineCapRound:
		r.circle(p, d)
	case graphics.LineCapSquare:
		r.outline = append(r.outline, []vec.Vec2{
			{X: p.X - d, Y: p.Y - d},
			{X: p.X + d, Y: p.Y - d},
			{X: p.X + d, Y: p.Y + d},
			{X: p.X - d, Y: p.Y + d},
		})
	}
}

// circle adds a polygon approximating the circle of radius d around p.
func (r *Rasterizer) circle(p vec.Vec2, d float64) {
	scale := math.Sqrt(math.Abs(r.CTM[0]*r.CTM[3] - r.CTM[1]*r.CTM[2]))
	radius := d * scale
	n := 8
	if radius > r.Flatness {
		step := 2 * math.Acos(1-r.Flatness/radius)
		n = min(max(n, int(math.Ceil(2*math.Pi/step))), 512)
	}

	poly := make([]vec.Vec2, n)
	for i := range poly {
		phi := 2 * math.Pi * float64(i) / float64(n)
		poly[i] = vec.Vec2{X: p.X + d*math.Cos(phi), Y: p.Y + d*math.Sin(phi)}
	}
	r.outline = append(r.outline, poly)
}

// addPolygon adds the edges of a closed polygon, with positive orientation.
func (r *Rasterizer) addPolygon(poly []vec.Vec2) {
	n := len(poly)
	if n < 3 {
		return
	}
	area := 0.0
	for i, p := range poly {
		q := poly[(i+1)%n]
		area += p.X*q.Y - q.X*p.Y
	}
	if area == 0 {
		return
	}
	for i := range poly {
		a, b := poly[i], poly[(i+1)%n]
		if area < 0 {
			a, b = b, a
		}
		r.addEdge(a, b)
	}
}
