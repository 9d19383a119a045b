package testcases

import (
	"seehuhn.de/go/svga/movie"
)

var shapeCases = []Case{
	{
		Name: "path_fill",
		Movie: &movie.Movie{
			Version: "2.0.0",
			Params:  params(64, 64, 20, 1),
			Sprites: []*movie.Sprite{{
				Frames: []*movie.Frame{{
					Alpha:     1,
					Transform: translate(0, 0),
					Shapes: []*movie.Shape{
						pathShape("M10 10 L54 10 L54 54 Z", fill(rgba(1, 0, 0, 1))),
					},
				}},
			}},
		},
	},
	{
		Name: "rect_rounded",
		Movie: &movie.Movie{
			Version: "2.0.0",
			Params:  params(64, 64, 20, 1),
			Sprites: []*movie.Sprite{{
				Frames: []*movie.Frame{{
					Alpha:     1,
					Transform: translate(0, 0),
					Shapes: []*movie.Shape{
						rectShape(8, 8, 48, 32, 8, &movie.ShapeStyle{
							Fill:        rgba(0.2, 0.6, 1, 1),
							Stroke:      rgba(0, 0, 0, 1),
							StrokeWidth: 2,
							LineJoin:    movie.LineJoinRound,
						}),
					},
				}},
			}},
		},
	},
	{
		Name: "ellipse_dashed",
		Movie: &movie.Movie{
			Version: "2.0.0",
			Params:  params(64, 64, 20, 1),
			Sprites: []*movie.Sprite{{
				Frames: []*movie.Frame{{
					Alpha:     1,
					Transform: translate(0, 0),
					Shapes: []*movie.Shape{
						ellipseShape(32, 32, 24, 16, &movie.ShapeStyle{
							Stroke:      rgba(0, 0.5, 0, 1),
							StrokeWidth: 3,
							LineCap:     movie.LineCapRound,
							LineDashI:   6,
							LineDashII:  4,
						}),
					},
				}},
			}},
		},
	},
	{
		Name: "shape_keep",
		Movie: &movie.Movie{
			Version: "2.0.0",
			Params:  params(64, 64, 20, 4),
			Sprites: []*movie.Sprite{{
				Frames: []*movie.Frame{
					{
						Alpha:     1,
						Transform: translate(0, 0),
						Shapes: []*movie.Shape{
							pathShape("M0 0h16v16h-16z", fill(rgba(1, 0.5, 0, 1))),
						},
					},
					{Alpha: 1, Transform: translate(16, 0), Shapes: []*movie.Shape{keep()}},
					{Alpha: 1, Transform: translate(32, 0), Shapes: []*movie.Shape{keep()}},
					{Alpha: 1, Transform: translate(48, 0), Shapes: []*movie.Shape{keep()}},
				},
			}},
		},
	},
}
