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

// Package testcases provides sample SVGA movies for tests and demos.
//
// The samples are built in code, so that they can be checked against the
// decoder, the frame model and the renderer without binary fixtures.
package testcases

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"seehuhn.de/go/svga/movie"
)

// Case is a sample movie.
type Case struct {
	Name  string // lowercase a-z and _ only
	Movie *movie.Movie
}

// Archive returns the movie encoded as an SVGA 2.x archive.
func (c Case) Archive() ([]byte, error) {
	return movie.Encode(c.Movie)
}

// Find returns the case with the given name.
func Find(name string) (Case, bool) {
	for _, cases := range All {
		for _, c := range cases {
			if c.Name == name {
				return c, true
			}
		}
	}
	return Case{}, false
}

func params(w, h float32, fps, frames int32) *movie.Params {
	return &movie.Params{ViewBoxWidth: w, ViewBoxHeight: h, FPS: fps, Frames: frames}
}

func translate(x, y float32) *movie.Transform {
	return &movie.Transform{A: 1, D: 1, TX: x, TY: y}
}

func layout(w, h float32) *movie.Layout {
	return &movie.Layout{Width: w, Height: h}
}

func rgba(r, g, b, a float32) *movie.RGBAColor {
	return &movie.RGBAColor{R: r, G: g, B: b, A: a}
}

func fill(c *movie.RGBAColor) *movie.ShapeStyle {
	return &movie.ShapeStyle{Fill: c}
}

func stroke(c *movie.RGBAColor, width float32) *movie.ShapeStyle {
	return &movie.ShapeStyle{Stroke: c, StrokeWidth: width}
}

func pathShape(d string, style *movie.ShapeStyle) *movie.Shape {
	return &movie.Shape{
		Type:   movie.ShapeTypeShape,
		Shape:  &movie.ShapeArgs{D: d},
		Styles: style,
	}
}

func rectShape(x, y, w, h, r float32, style *movie.ShapeStyle) *movie.Shape {
	return &movie.Shape{
		Type:   movie.ShapeTypeRect,
		Rect:   &movie.RectArgs{X: x, Y: y, Width: w, Height: h, CornerRadius: r},
		Styles: style,
	}
}

func ellipseShape(x, y, rx, ry float32, style *movie.ShapeStyle) *movie.Shape {
	return &movie.Shape{
		Type:    movie.ShapeTypeEllipse,
		Ellipse: &movie.EllipseArgs{X: x, Y: y, RadiusX: rx, RadiusY: ry},
		Styles:  style,
	}
}

func keep() *movie.Shape {
	return &movie.Shape{Type: movie.ShapeTypeKeep}
}

// checkerPNG returns a PNG image with a 2×2 checker board pattern in the
// two given colors.
func checkerPNG(w, h int, c1, c2 color.NRGBA) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if (2*x/w+2*y/h)%2 == 0 {
				img.SetNRGBA(x, y, c1)
			} else {
				img.SetNRGBA(x, y, c2)
			}
		}
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		panic(err) // writing to a bytes.Buffer cannot fail
	}
	return buf.Bytes()
}
