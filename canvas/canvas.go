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

// Package canvas defines the drawing surface used for rendering frames.
//
// The interface follows the usual immediate-mode 2D drawing model: a current
// transformation, paint and line settings which are saved and restored as a
// unit, and a current path which is filled, stroked or used as a clip
// region.
package canvas

import (
	"image"
	"image/color"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf/graphics"
)

// Canvas is a 2D drawing surface.
type Canvas interface {
	// Width and Height give the size of the surface in pixels.
	Width() int
	Height() int

	// Save pushes the drawing state onto a stack.  Restore pops it again.
	// The drawing state consists of the transformation, the clip region,
	// the global alpha value, both paints and all line settings.
	Save()
	Restore()

	// Transform multiplies the current transformation by m, so that m is
	// applied to coordinates before the existing transformation.
	Transform(m matrix.Matrix)

	SetGlobalAlpha(alpha float64)
	SetFillColor(c color.Color)
	SetStrokeColor(c color.Color)
	SetLineWidth(w float64)
	SetLineCap(c graphics.LineCapStyle)
	SetLineJoin(j graphics.LineJoinStyle)
	SetMiterLimit(limit float64)

	// SetLineDash sets the dash pattern.  An empty pattern gives solid
	// lines.
	SetLineDash(pattern []float64)

	// BeginPath discards the current path.
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadTo(cx, cy, x, y float64)
	CubeTo(c1x, c1y, c2x, c2y, x, y float64)

	// ArcTo adds a circular arc of radius r, tangent to the line from the
	// current point to (x1, y1) and to the line from (x1, y1) to (x2, y2).
	// It is preceded by a straight line to the first tangent point.
	ArcTo(x1, y1, x2, y2, r float64)
	ClosePath()

	// Fill fills the current path using the nonzero winding rule.
	Fill()
	Stroke()

	// Clip intersects the clip region with the current path.
	Clip()

	// DrawImage draws img with its top-left corner at (x, y).
	DrawImage(img image.Image, x, y float64)

	// DrawImageScaled draws img scaled into the rectangle with top-left
	// corner (x, y), width w and height h.
	DrawImageScaled(img image.Image, x, y, w, h float64)

	// Clear sets all pixels to transparent black.  The drawing state is
	// not affected.
	Clear()
}

// Resizer is implemented by surfaces which can change their size.
type Resizer interface {
	Resize(width, height int)
}

// Transparent is fully transparent black.
var Transparent = color.NRGBA{}
