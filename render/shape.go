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

package render

import (
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/svga/canvas"
	"seehuhn.de/go/svga/entity"
	"seehuhn.de/go/svga/svgpath"
)

// kappa is the control point distance, relative to the radius, for
// approximating a quarter ellipse by a cubic Bézier curve.
const kappa = 0.5522848

// drawShape draws a single shape.  The drawing state is saved and restored
// around the shape, so that its style and transformation do not leak into
// the following shapes.
func drawShape(c canvas.Canvas, s entity.Shape) {
	var style entity.Style
	var tf entity.Transform
	var build func()

	switch s := s.(type) {
	case *entity.PathShape:
		if s.D == "" {
			return
		}
		style, tf = s.Style, s.Transform
		build = func() { svgpath.Interpret(s.D, c) }
	case *entity.RectShape:
		style, tf = s.Style, s.Transform
		build = func() { rectPath(c, s) }
	case *entity.EllipseShape:
		style, tf = s.Style, s.Transform
		build = func() { ellipsePath(c, s) }
	default:
		return
	}

	c.Save()
	applyStyle(c, style)
	c.Transform(tf.Matrix())
	c.BeginPath()
	build()
	switch {
	case style.Fill != nil:
		c.Fill()
	case style.Stroke != nil:
		c.Stroke()
	}
	c.Restore()
}

// rectPath builds a rectangle whose corners are rounded with arcs.
// The radius is limited to half the width and half the height.
func rectPath(c canvas.Canvas, s *entity.RectShape) {
	x, y, w, h := s.X, s.Y, s.Width, s.Height
	r := s.CornerRadius
	if w < 2*r {
		r = w / 2
	}
	if h < 2*r {
		r = h / 2
	}

	c.MoveTo(x+r, y)
	c.ArcTo(x+w, y, x+w, y+h, r)
	c.ArcTo(x+w, y+h, x, y+h, r)
	c.ArcTo(x, y+h, x, y, r)
	c.ArcTo(x, y, x+w, y, r)
	c.ClosePath()
}

// ellipsePath builds an ellipse from four cubic Bézier curves, starting at
// the leftmost point.
func ellipsePath(c canvas.Canvas, s *entity.EllipseShape) {
	x := s.X - s.RadiusX
	y := s.Y - s.RadiusY
	w := 2 * s.RadiusX
	h := 2 * s.RadiusY

	ox := w / 2 * kappa
	oy := h / 2 * kappa
	xe, ye := x+w, y+h
	xm, ym := x+w/2, y+h/2

	c.MoveTo(x, ym)
	c.CubeTo(x, ym-oy, xm-ox, y, xm, y)
	c.CubeTo(xm+ox, y, xe, ym-oy, xe, ym)
	c.CubeTo(xe, ym+oy, xm+ox, ye, xm, ye)
	c.CubeTo(xm-ox, ye, x, ym+oy, x, ym)
}

// applyStyle sets the paint and line settings for a shape.
//
// Both paints are always set, using transparent paint for a missing color.
// Line settings which the style does not specify keep their current value.
// A dash pattern, once set, stays in effect until the next Restore or until
// a later style sets a new one.
func applyStyle(c canvas.Canvas, st entity.Style) {
	if st.Stroke != nil {
		c.SetStrokeColor(*st.Stroke)
	} else {
		c.SetStrokeColor(canvas.Transparent)
	}

	if st.StrokeWidth != nil {
		c.SetLineWidth(*st.StrokeWidth)
	}
	if st.Cap != entity.CapUnset {
		c.SetLineCap(lineCap(st.Cap))
	}
	if st.Join != entity.JoinUnset {
		c.SetLineJoin(lineJoin(st.Join))
	}
	if st.MiterLimit != nil {
		c.SetMiterLimit(*st.MiterLimit)
	}

	if st.Fill != nil {
		c.SetFillColor(*st.Fill)
	} else {
		c.SetFillColor(canvas.Transparent)
	}

	if st.Dash != nil {
		c.SetLineDash(st.Dash)
	}
}

func lineCap(lc entity.LineCap) graphics.LineCapStyle {
	switch lc {
	case entity.CapRound:
		return graphics.LineCapRound
	case entity.CapSquare:
		return graphics.LineCapSquare
	default:
		return graphics.LineCapButt
	}
}

func lineJoin(lj entity.LineJoin) graphics.LineJoinStyle {
	switch lj {
	case entity.JoinRound:
		return graphics.LineJoinRound
	case entity.JoinBevel:
		return graphics.LineJoinBevel
	default:
		return graphics.LineJoinMiter
	}
}
