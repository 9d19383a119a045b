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

package entity

import (
	"image"
	"math"

	"seehuhn.de/go/svga/movie"
)

// New builds the frame model for a decoded movie.
//
// The images map gives the image assets to use.  If it is nil, the raw
// image data of the movie is used without decoding.  New never decodes
// bitmaps itself.
func New(m *movie.Movie, images map[string]*Image) *VideoEntity {
	v := &VideoEntity{
		Version: m.Version,
		Images:  images,
		Replace: make(map[string]image.Image),
		Dynamic: make(map[string]image.Image),
	}
	if p := m.Params; p != nil {
		v.Size = Size{Width: float64(p.ViewBoxWidth), Height: float64(p.ViewBoxHeight)}
		v.FPS = int(p.FPS)
		v.Frames = int(p.Frames)
	}
	if v.Images == nil {
		v.Images = make(map[string]*Image, len(m.Images))
		for key, data := range m.Images {
			v.Images[key] = &Image{Data: data}
		}
	}

	v.Sprites = make([]*Sprite, 0, len(m.Sprites))
	for _, s := range m.Sprites {
		v.Sprites = append(v.Sprites, newSprite(s))
	}
	return v
}

func newSprite(s *movie.Sprite) *Sprite {
	sprite := &Sprite{
		ImageKey: s.ImageKey,
		MatteKey: s.MatteKey,
		Frames:   make([]*Frame, 0, len(s.Frames)),
	}

	// last is the most recently constructed shape list, reused by frames
	// whose first shape is a keep marker.
	var last []Shape
	for _, f := range s.Frames {
		frame := newFrame(f)
		if len(f.Shapes) > 0 && f.Shapes[0].Type == movie.ShapeTypeKeep {
			frame.Shapes = last
		} else {
			frame.Shapes = newShapes(f.Shapes)
			last = frame.Shapes
		}
		sprite.Frames = append(sprite.Frames, frame)
	}
	return sprite
}

func newFrame(f *movie.Frame) *Frame {
	frame := &Frame{
		Alpha:     float64(f.Alpha),
		Transform: newTransform(f.Transform),
		ClipPath:  f.ClipPath,
	}
	if l := f.Layout; l != nil {
		frame.Layout = Rect{
			X:      float64(l.X),
			Y:      float64(l.Y),
			Width:  float64(l.Width),
			Height: float64(l.Height),
		}
	}
	frame.NX, frame.NY = bound(frame.Transform, frame.Layout)

	if frame.ClipPath != "" {
		frame.MaskPath = &PathShape{
			D:         frame.ClipPath,
			Style:     Style{Fill: &Color{}},
			Transform: Identity,
		}
	}
	return frame
}

// bound transforms the corners of l with t and returns the componentwise
// minimum.
func bound(t Transform, l Rect) (nx, ny float64) {
	corners := [4][2]float64{
		{l.X, l.Y},
		{l.X + l.Width, l.Y},
		{l.X, l.Y + l.Height},
		{l.X + l.Width, l.Y + l.Height},
	}
	nx, ny = math.Inf(1), math.Inf(1)
	for _, c := range corners {
		x, y := t.Apply(c[0], c[1])
		nx = min(nx, x)
		ny = min(ny, y)
	}
	return nx, ny
}

func newTransform(t *movie.Transform) Transform {
	if t == nil {
		return Identity
	}
	return Transform{
		A:  float64(t.A),
		B:  float64(t.B),
		C:  float64(t.C),
		D:  float64(t.D),
		TX: float64(t.TX),
		TY: float64(t.TY),
	}
}

// newShapes converts a shape list.  The result is nil if no shape carries
// geometry.
func newShapes(raw []*movie.Shape) []Shape {
	var shapes []Shape
	for _, s := range raw {
		style := newStyle(s.Styles)
		tf := newTransform(s.Transform)

		switch s.Type {
		case movie.ShapeTypeShape:
			var d string
			if s.Shape != nil {
				d = s.Shape.D
			}
			shapes = append(shapes, &PathShape{D: d, Style: style, Transform: tf})
		case movie.ShapeTypeRect:
			r := s.Rect
			if r == nil {
				r = &movie.RectArgs{}
			}
			shapes = append(shapes, &RectShape{
				X:            float64(r.X),
				Y:            float64(r.Y),
				Width:        float64(r.Width),
				Height:       float64(r.Height),
				CornerRadius: float64(r.CornerRadius),
				Style:        style,
				Transform:    tf,
			})
		case movie.ShapeTypeEllipse:
			e := s.Ellipse
			if e == nil {
				e = &movie.EllipseArgs{}
			}
			shapes = append(shapes, &EllipseShape{
				X:         float64(e.X),
				Y:         float64(e.Y),
				RadiusX:   float64(e.RadiusX),
				RadiusY:   float64(e.RadiusY),
				Style:     style,
				Transform: tf,
			})
		}
		// Keep markers after the first position and unknown types carry
		// no geometry.
	}
	return shapes
}

func newStyle(s *movie.ShapeStyle) Style {
	if s == nil {
		return Style{}
	}

	style := Style{
		Fill:   newColor(s.Fill),
		Stroke: newColor(s.Stroke),
		Dash:   Dash(s.LineDashI, s.LineDashII, s.LineDashIII),
	}
	if s.StrokeWidth > 0 {
		w := float64(s.StrokeWidth)
		style.StrokeWidth = &w
	}
	if s.MiterLimit > 0 {
		m := float64(s.MiterLimit)
		style.MiterLimit = &m
	}

	switch s.LineCap {
	case movie.LineCapRound:
		style.Cap = CapRound
	case movie.LineCapSquare:
		style.Cap = CapSquare
	default:
		style.Cap = CapButt
	}
	switch s.LineJoin {
	case movie.LineJoinRound:
		style.Join = JoinRound
	case movie.LineJoinBevel:
		style.Join = JoinBevel
	default:
		style.Join = JoinMiter
	}
	return style
}

// newColor converts channels in the range 0 to 1.  Color channels are
// truncated to integers, alpha is kept as is.
func newColor(c *movie.RGBAColor) *Color {
	if c == nil {
		return nil
	}
	return &Color{
		R: channel(c.R),
		G: channel(c.G),
		B: channel(c.B),
		A: float64(c.A),
	}
}

func channel(v float32) uint8 {
	x := math.Trunc(float64(v) * 255)
	return uint8(min(max(x, 0), 255))
}

// Dash assembles a dash pattern from the three dash fields of the file
// format.  Only positive fields count; the others are treated as zero.  If
// no field is positive, the line is solid and Dash returns nil.  If a single
// field is positive, the pattern ends at that field and the earlier slots
// are zero.  Otherwise all three slots are used.
func Dash(i, ii, iii float32) []float64 {
	vals := [3]float64{float64(i), float64(ii), float64(iii)}
	nonZero := 0
	lastNonZero := -1
	for k, v := range vals {
		if !(v > 0) {
			vals[k] = 0
			continue
		}
		nonZero++
		lastNonZero = k
	}
	switch nonZero {
	case 0:
		return nil
	case 1:
		return append([]float64(nil), vals[:lastNonZero+1]...)
	default:
		return append([]float64(nil), vals[:]...)
	}
}
