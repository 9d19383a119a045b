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

// Package svgpath interprets the compact path strings stored in SVGA shapes.
//
// The supported commands are a subset of SVG path data: M, L, H, V, C, S, Q
// and Z, in absolute and relative form.  Elliptical arcs (A/a) are accepted
// but draw nothing.  Each command uses a single set of arguments; excess
// numbers are ignored.
package svgpath

import (
	"github.com/tdewolff/parse/v2/strconv"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Builder receives the path construction calls generated by [Interpret].
// A canvas.Canvas satisfies this interface.
type Builder interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadTo(cx, cy, x, y float64)
	CubeTo(c1x, c1y, c2x, c2y, x, y float64)
	ClosePath()
}

// cursor is the interpreter state carried from one command to the next.
type cursor struct {
	x, y   float64 // current point
	x1, y1 float64 // first control point of the last curve
	x2, y2 float64 // second control point of the last cubic

	// hasCubic records whether x2, y2 hold a control point which S/s can
	// reflect.  Later M, L and Q commands do not clear it.
	hasCubic bool
}

// argCount gives the number of arguments each command consumes.
var argCount = map[byte]int{
	'M': 2, 'L': 2, 'H': 1, 'V': 1, 'C': 6, 'S': 4, 'Q': 4, 'A': 7, 'Z': 0,
}

// Interpret parses the path string d and issues the corresponding calls on b.
// The cursor starts at the origin.  Unknown command letters and commands
// with too few arguments are skipped.
func Interpret(d string, b Builder) {
	buf := []byte(d)
	var c cursor
	var args [7]float64

	i := 0
	for i < len(buf) {
		cmd := buf[i]
		if !isLetter(cmd) {
			i++
			continue
		}
		i++

		upper := cmd &^ 0x20
		want, known := argCount[upper]

		// Collect the numbers up to the next command letter.
		n := 0
		for {
			i = skipSeparators(buf, i)
			if i >= len(buf) || isLetter(buf[i]) {
				break
			}
			v, k := strconv.ParseFloat(buf[i:])
			if k == 0 {
				i++ // not a number, drop the byte
				continue
			}
			if n < len(args) {
				args[n] = v
			}
			n++
			i += k
		}

		if !known || n < want {
			continue
		}
		c.apply(cmd, args[:want], b)
	}
}

func (c *cursor) apply(cmd byte, a []float64, b Builder) {
	switch cmd {
	case 'M':
		c.x, c.y = a[0], a[1]
		b.MoveTo(c.x, c.y)
	case 'm':
		c.x += a[0]
		c.y += a[1]
		b.MoveTo(c.x, c.y)
	case 'L':
		c.x, c.y = a[0], a[1]
		b.LineTo(c.x, c.y)
	case 'l':
		c.x += a[0]
		c.y += a[1]
		b.LineTo(c.x, c.y)
	case 'H':
		c.x = a[0]
		b.LineTo(c.x, c.y)
	case 'h':
		c.x += a[0]
		b.LineTo(c.x, c.y)
	case 'V':
		c.y = a[0]
		b.LineTo(c.x, c.y)
	case 'v':
		c.y += a[0]
		b.LineTo(c.x, c.y)
	case 'C':
		c.x1, c.y1 = a[0], a[1]
		c.x2, c.y2 = a[2], a[3]
		c.x, c.y = a[4], a[5]
		c.hasCubic = true
		b.CubeTo(c.x1, c.y1, c.x2, c.y2, c.x, c.y)
	case 'c':
		c.x1, c.y1 = c.x+a[0], c.y+a[1]
		c.x2, c.y2 = c.x+a[2], c.y+a[3]
		c.x += a[4]
		c.y += a[5]
		c.hasCubic = true
		b.CubeTo(c.x1, c.y1, c.x2, c.y2, c.x, c.y)
	case 'S', 's':
		var ox, oy float64
		if cmd == 's' {
			ox, oy = c.x, c.y
		}
		if !c.hasCubic {
			c.x1, c.y1 = ox+a[0], oy+a[1]
			c.x, c.y = ox+a[2], oy+a[3]
			b.QuadTo(c.x1, c.y1, c.x, c.y)
			return
		}
		c.x1, c.y1 = 2*c.x-c.x2, 2*c.y-c.y2
		c.x2, c.y2 = ox+a[0], oy+a[1]
		c.x, c.y = ox+a[2], oy+a[3]
		b.CubeTo(c.x1, c.y1, c.x2, c.y2, c.x, c.y)
	case 'Q':
		c.x1, c.y1 = a[0], a[1]
		c.x, c.y = a[2], a[3]
		b.QuadTo(c.x1, c.y1, c.x, c.y)
	case 'q':
		c.x1, c.y1 = c.x+a[0], c.y+a[1]
		c.x += a[2]
		c.y += a[3]
		b.QuadTo(c.x1, c.y1, c.x, c.y)
	case 'A', 'a':
		// arcs are not supported
	case 'Z', 'z':
		b.ClosePath()
	}
}

func isLetter(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z'
}

// skipSeparators advances past white space and commas.
func skipSeparators(buf []byte, i int) int {
	for i < len(buf) {
		switch buf[i] {
		case ' ', ',', '\t', '\n', '\r', '\f':
			i++
		default:
			return i
		}
	}
	return i
}

// ToData interprets d and returns the result as a path.
func ToData(d string) *path.Data {
	b := &dataBuilder{p: &path.Data{}}
	Interpret(d, b)
	return b.p
}

type dataBuilder struct {
	p *path.Data
}

func (b *dataBuilder) MoveTo(x, y float64) {
	b.p.MoveTo(vec.Vec2{X: x, Y: y})
}

func (b *dataBuilder) LineTo(x, y float64) {
	b.p.LineTo(vec.Vec2{X: x, Y: y})
}

func (b *dataBuilder) QuadTo(cx, cy, x, y float64) {
	b.p.QuadTo(vec.Vec2{X: cx, Y: cy}, vec.Vec2{X: x, Y: y})
}

func (b *dataBuilder) CubeTo(c1x, c1y, c2x, c2y, x, y float64) {
	b.p.CubeTo(vec.Vec2{X: c1x, Y: c1y}, vec.Vec2{X: c2x, Y: c2y}, vec.Vec2{X: x, Y: y})
}

func (b *dataBuilder) ClosePath() {
	b.p.Close()
}
