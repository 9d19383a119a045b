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

// Package entity holds the decoded frame model of an SVGA animation.
//
// A [VideoEntity] is built once from a decoded [movie.Movie] by [New] and
// is not modified afterwards, except for the replacement and dynamic
// element tables which the embedding application may fill in.
package entity

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"strconv"

	_ "golang.org/x/image/webp" // register WebP decoder

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// VideoEntity is a decoded animation.
type VideoEntity struct {
	Version string
	Size    Size
	FPS     int
	Frames  int

	// Images maps image keys to the image assets of the movie.
	Images map[string]*Image

	// Replace holds images which are drawn instead of the movie's own
	// bitmap for the given key.
	Replace map[string]image.Image

	// Dynamic holds images which are drawn on top of the sprite using the
	// given key, centered in the frame's layout rectangle.
	Dynamic map[string]image.Image

	Sprites []*Sprite
}

// Size is the size of the view box.
type Size struct {
	Width, Height float64
}

// Sprite is one animated layer.
type Sprite struct {
	// ImageKey names the bitmap drawn for this sprite, if any.
	ImageKey string

	// MatteKey names a sprite used as a matte.  It is carried through from
	// the archive but not interpreted.
	MatteKey string

	Frames []*Frame
}

// Frame is the state of a sprite at one time step.
type Frame struct {
	Alpha     float64
	Transform Transform
	Layout    Rect
	ClipPath  string

	// NX and NY are the minimum coordinates of the transformed layout
	// rectangle.
	NX, NY float64

	Shapes []Shape

	// MaskPath is the clip region of the frame, or nil if ClipPath is
	// empty.
	MaskPath *PathShape
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, Width, Height float64
}

// Bounds returns r as a geometry rectangle.
func (r Rect) Bounds() rect.Rect {
	return rect.Rect{LLx: r.X, LLy: r.Y, URx: r.X + r.Width, URy: r.Y + r.Height}
}

// Transform is a 2D affine transformation.  A point (x, y) is mapped to
// (A*x + C*y + TX, B*x + D*y + TY).
type Transform struct {
	A, B, C, D, TX, TY float64
}

// Identity is the identity transformation.
var Identity = Transform{A: 1, D: 1}

// Matrix returns t in the form used by the rasteriser.
func (t Transform) Matrix() matrix.Matrix {
	return matrix.Matrix{t.A, t.B, t.C, t.D, t.TX, t.TY}
}

// Apply maps the point (x, y).
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t.A*x + t.C*y + t.TX, t.B*x + t.D*y + t.TY
}

// Shape is one of [*PathShape], [*RectShape] or [*EllipseShape].
type Shape interface {
	isShape()
}

// PathShape is a shape given by path data.
type PathShape struct {
	D         string
	Style     Style
	Transform Transform
}

// RectShape is a rectangle with optionally rounded corners.
type RectShape struct {
	X, Y, Width, Height float64
	CornerRadius        float64
	Style               Style
	Transform           Transform
}

// EllipseShape is an axis-aligned ellipse centered at (X, Y).
type EllipseShape struct {
	X, Y             float64
	RadiusX, RadiusY float64
	Style            Style
	Transform        Transform
}

func (*PathShape) isShape()    {}
func (*RectShape) isShape()    {}
func (*EllipseShape) isShape() {}

// Style describes how a shape is painted.  Absent values are nil or zero,
// and leave the corresponding drawing state untouched.
type Style struct {
	Fill   *Color
	Stroke *Color

	StrokeWidth *float64
	MiterLimit  *float64
	Cap         LineCap
	Join        LineJoin

	// Dash is the dash pattern, or nil for solid lines.
	Dash []float64
}

// Color is an RGB color with an alpha value between 0 and 1.
type Color struct {
	R, G, B uint8
	A       float64
}

// String formats c in CSS notation, for example "rgba(255, 127, 0, 0.8)".
func (c Color) String() string {
	buf := make([]byte, 0, 24)
	buf = append(buf, "rgba("...)
	buf = strconv.AppendUint(buf, uint64(c.R), 10)
	buf = append(buf, ", "...)
	buf = strconv.AppendUint(buf, uint64(c.G), 10)
	buf = append(buf, ", "...)
	buf = strconv.AppendUint(buf, uint64(c.B), 10)
	buf = append(buf, ", "...)
	buf = strconv.AppendFloat(buf, c.A, 'f', -1, 32)
	buf = append(buf, ')')
	return string(buf)
}

// RGBA implements the color.Color interface.
func (c Color) RGBA() (r, g, b, a uint32) {
	alpha := min(max(c.A, 0), 1)
	a = uint32(alpha*0xffff + 0.5)
	r = uint32(c.R) * 0x101 * a / 0xffff
	g = uint32(c.G) * 0x101 * a / 0xffff
	b = uint32(c.B) * 0x101 * a / 0xffff
	return
}

// LineCap is a stroke cap style.  The zero value means "not set".
type LineCap uint8

// Stroke cap styles.
const (
	CapUnset LineCap = iota
	CapButt
	CapRound
	CapSquare
)

func (c LineCap) String() string {
	switch c {
	case CapButt:
		return "butt"
	case CapRound:
		return "round"
	case CapSquare:
		return "square"
	default:
		return ""
	}
}

// LineJoin is a stroke join style.  The zero value means "not set".
type LineJoin uint8

// Stroke join styles.
const (
	JoinUnset LineJoin = iota
	JoinMiter
	JoinRound
	JoinBevel
)

func (j LineJoin) String() string {
	switch j {
	case JoinMiter:
		return "miter"
	case JoinRound:
		return "round"
	case JoinBevel:
		return "bevel"
	default:
		return ""
	}
}

// Image is an image asset.  Data holds the compressed file contents as
// found in the archive; the decoded bitmap is attached later.
type Image struct {
	Data []byte

	bitmap image.Image
}

// NewBitmap returns an asset for an already decoded image.
func NewBitmap(img image.Image) *Image {
	return &Image{bitmap: img}
}

// Bitmap returns the decoded image, or nil if the asset has not been
// decoded.
func (im *Image) Bitmap() image.Image {
	if im == nil {
		return nil
	}
	return im.bitmap
}

// SetBitmap attaches a decoded image to the asset.
func (im *Image) SetBitmap(img image.Image) {
	im.bitmap = img
}

// ErrNoData is returned by [Image.Decode] for assets without image data.
var ErrNoData = errors.New("image asset has no data")

// Decode decodes the image data of the asset.  PNG, JPEG and WebP files are
// supported.  The result is not attached to the asset.
func (im *Image) Decode() (image.Image, error) {
	if im == nil || len(im.Data) == 0 {
		return nil, ErrNoData
	}
	img, _, err := image.Decode(bytes.NewReader(im.Data))
	return img, err
}
