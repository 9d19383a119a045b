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
	"math"

	"seehuhn.de/go/svga/movie"
)

var timelineCases = []Case{
	{
		Name:  "bouncing_ball",
		Movie: bouncingBall(30),
	},
	{
		Name:  "fade",
		Movie: fade(10),
	},
}

// bouncingBall is a ball moving up and down once, with a shadow whose
// opacity follows the height of the ball.
func bouncingBall(frames int) *movie.Movie {
	ball := &movie.Sprite{}
	shadow := &movie.Sprite{}
	for i := range frames {
		phase := float64(i) / float64(frames)
		height := float32(math.Abs(math.Sin(math.Pi * phase)))

		ballFrame := &movie.Frame{
			Alpha:     1,
			Transform: translate(64, 100-64*height),
			Shapes:    []*movie.Shape{keep()},
		}
		if i == 0 {
			ballFrame.Shapes = []*movie.Shape{
				ellipseShape(0, 0, 12, 12, &movie.ShapeStyle{
					Fill:        rgba(0.9, 0.2, 0.2, 1),
					Stroke:      rgba(0.3, 0, 0, 1),
					StrokeWidth: 1.5,
				}),
			}
		}
		ball.Frames = append(ball.Frames, ballFrame)

		shadowFrame := &movie.Frame{
			Alpha:     0.8 - 0.6*height,
			Transform: translate(64, 116),
			Shapes: []*movie.Shape{
				ellipseShape(0, 0, 16-8*height, 3, fill(rgba(0, 0, 0, 1))),
			},
		}
		shadow.Frames = append(shadow.Frames, shadowFrame)
	}

	return &movie.Movie{
		Version: "2.0.0",
		Params:  params(128, 128, 30, int32(frames)),
		Sprites: []*movie.Sprite{shadow, ball},
	}
}

// fade is a square fading in.  The first frame is fully transparent.
func fade(frames int) *movie.Movie {
	s := &movie.Sprite{}
	for i := range frames {
		s.Frames = append(s.Frames, &movie.Frame{
			Alpha:     float32(i) / float32(frames-1),
			Transform: translate(0, 0),
			Shapes:    []*movie.Shape{pathShape("M4 4h24v24h-24z", fill(rgba(0, 0, 1, 1)))},
		})
	}
	return &movie.Movie{
		Version: "2.0.0",
		Params:  params(32, 32, 10, int32(frames)),
		Sprites: []*movie.Sprite{s},
	}
}
