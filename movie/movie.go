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

// Package movie reads the SVGA archive format.
//
// An SVGA 2.x archive is a zlib stream containing a protocol buffer encoded
// MovieEntity message.  Version 1.x archives are ZIP files holding a JSON
// description (movie.spec) and one PNG file per image.  Both are decoded
// into the same [Movie] structure.
//
// The types in this package mirror the wire format.  Optional sub-messages
// are pointers, so that an absent field can be told apart from one holding
// default values.
package movie

// Movie is the top-level message of an SVGA archive.
type Movie struct {
	Version string
	Params  *Params
	Images  map[string][]byte
	Sprites []*Sprite
}

// Params holds the global animation parameters.
type Params struct {
	ViewBoxWidth  float32
	ViewBoxHeight float32
	FPS           int32
	Frames        int32
}

// Sprite is one animated layer.
type Sprite struct {
	ImageKey string
	Frames   []*Frame
	MatteKey string
}

// Frame is the state of a sprite at one time step.
type Frame struct {
	Alpha     float32
	Layout    *Layout
	Transform *Transform
	ClipPath  string
	Shapes    []*Shape
}

// Layout is the layout rectangle of a frame.
type Layout struct {
	X, Y, Width, Height float32
}

// Transform is a 2D affine transformation.
type Transform struct {
	A, B, C, D, TX, TY float32
}

// ShapeType identifies the geometry of a shape.
type ShapeType int32

// These are the shape types defined by the file format.
const (
	ShapeTypeShape ShapeType = iota
	ShapeTypeRect
	ShapeTypeEllipse
	ShapeTypeKeep
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeShape:
		return "shape"
	case ShapeTypeRect:
		return "rect"
	case ShapeTypeEllipse:
		return "ellipse"
	case ShapeTypeKeep:
		return "keep"
	default:
		return "unknown"
	}
}

// Shape is a vector shape drawn on top of a sprite's bitmap.
// Which of Shape, Rect and Ellipse is used depends on Type.
type Shape struct {
	Type      ShapeType
	Shape     *ShapeArgs
	Rect      *RectArgs
	Ellipse   *EllipseArgs
	Styles    *ShapeStyle
	Transform *Transform
}

// ShapeArgs is the geometry of a free-form path.
type ShapeArgs struct {
	D string
}

// RectArgs is the geometry of a (rounded) rectangle.
type RectArgs struct {
	X, Y, Width, Height, CornerRadius float32
}

// EllipseArgs is the geometry of an ellipse.
type EllipseArgs struct {
	X, Y, RadiusX, RadiusY float32
}

// LineCap is the wire encoding of a stroke cap style.
type LineCap int32

// Stroke cap styles.
const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

// LineJoin is the wire encoding of a stroke join style.
type LineJoin int32

// Stroke join styles.
const (
	LineJoinMiter LineJoin = iota
	LineJoinRound
	LineJoinBevel
)

// ShapeStyle describes how a shape is painted.
type ShapeStyle struct {
	Fill        *RGBAColor
	Stroke      *RGBAColor
	StrokeWidth float32
	LineCap     LineCap
	LineJoin    LineJoin
	MiterLimit  float32
	LineDashI   float32
	LineDashII  float32
	LineDashIII float32
}

// RGBAColor is a color with channels in the range 0 to 1.
type RGBAColor struct {
	R, G, B, A float32
}
