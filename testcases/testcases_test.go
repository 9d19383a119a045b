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
	"regexp"
	"testing"

	"seehuhn.de/go/svga/movie"
)

var validName = regexp.MustCompile(`^[a-z_]+$`)

func TestCases(t *testing.T) {
	seen := make(map[string]bool)
	for category, cases := range All {
		for _, c := range cases {
			if !validName.MatchString(c.Name) {
				t.Errorf("%s: invalid name %q", category, c.Name)
			}
			if seen[c.Name] {
				t.Errorf("duplicate name %q", c.Name)
			}
			seen[c.Name] = true

			p := c.Movie.Params
			if p == nil || p.Frames <= 0 {
				t.Errorf("%s: missing frame count", c.Name)
				continue
			}
			for i, s := range c.Movie.Sprites {
				if len(s.Frames) != int(p.Frames) {
					t.Errorf("%s: sprite %d has %d frames, want %d",
						c.Name, i, len(s.Frames), p.Frames)
				}
			}
		}
	}
}

func TestArchive(t *testing.T) {
	c, ok := Find("bouncing_ball")
	if !ok {
		t.Fatal("bouncing_ball not found")
	}
	data, err := c.Archive()
	if err != nil {
		t.Fatal(err)
	}
	if v := movie.Detect(data); v != movie.Current {
		t.Errorf("archive detected as %v", v)
	}
	m, err := movie.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Sprites) != 2 || m.Params.Frames != 30 {
		t.Errorf("unexpected movie: %d sprites, %d frames", len(m.Sprites), m.Params.Frames)
	}

	if _, ok := Find("no_such_case"); ok {
		t.Error("Find returned a case for an unknown name")
	}
}
