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

package testcases

import (
	"image/color"

	"seehuhn.de/go/svga/movie"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

var bitmapCases = []Case{
	{
		Name: "bitmap",
		Movie: &movie.Movie{
			Version: "2.0.0",
			Params:  params(64, 64, 20, 2),
			Images: map[string][]byte{
				"checker": checkerPNG(16, 16, red, blue),
			},
			Sprites: []*movie.Sprite{{
				ImageKey: "checker",
				Frames: []*movie.Frame{
					{Alpha: 1, Layout: layout(16, 16), Transform: translate(8, 8)},
					{Alpha: 0.5, Layout: layout(16, 16), Transform: translate(40, 40)},
				},
			}},
		},
	},
	{
		Name: "bitmap_masked",
		Movie: &movie.Movie{
			Version: "2.0.0",
			Params:  params(32, 32, 20, 1),
			Images: map[string][]byte{
				"checker": checkerPNG(32, 32, red, blue),
			},
			Sprites: []*movie.Sprite{{
				ImageKey: "checker",
				Frames: []*movie.Frame{{
					Alpha:     1,
					Layout:    layout(32, 32),
					Transform: translate(0, 0),
					ClipPath:  "M0 0H16V16H0Z",
				}},
			}},
		},
	},
	{
		// The second sprite has shapes on top of its bitmap, the first one
		// names an image which is not part of the archive.
		Name: "bitmap_layers",
		Movie: &movie.Movie{
			Version: "2.0.0",
			Params:  params(64, 64, 20, 1),
			Images: map[string][]byte{
				"checker": checkerPNG(16, 16, red, blue),
			},
			Sprites: []*movie.Sprite{
				{
					ImageKey: "missing",
					Frames: []*movie.Frame{
						{Alpha: 1, Layout: layout(16, 16), Transform: translate(0, 0)},
					},
				},
				{
					ImageKey: "checker",
					Frames: []*movie.Frame{{
						Alpha:     1,
						Layout:    layout(16, 16),
						Transform: translate(24, 24),
						Shapes: []*movie.Shape{
							rectShape(0, 0, 16, 16, 0, stroke(rgba(0, 0, 0, 1), 2)),
						},
					}},
				},
			},
		},
	},
}
