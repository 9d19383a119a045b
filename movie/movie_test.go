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

package movie

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/klauspost/compress/zip"
	"google.golang.org/protobuf/encoding/protowire"
)

func sampleMovie() *Movie {
	return &Movie{
		Version: "2.0.0",
		Params: &Params{
			ViewBoxWidth:  300,
			ViewBoxHeight: 200,
			FPS:           24,
			Frames:        2,
		},
		Images: map[string][]byte{
			"img1": {1, 2, 3},
			"img2": {4, 5},
		},
		Sprites: []*Sprite{
			{
				ImageKey: "img1",
				Frames: []*Frame{
					{
						Alpha:     1,
						Layout:    &Layout{X: 1, Y: 2, Width: 30, Height: 40},
						Transform: &Transform{A: 1, D: 1, TX: 5, TY: -5},
						ClipPath:  "M0 0L10 0L10 10Z",
						Shapes: []*Shape{
							{
								Type:  ShapeTypeShape,
								Shape: &ShapeArgs{D: "M0 0L1 1"},
								Styles: &ShapeStyle{
									Fill:        &RGBAColor{R: 1, G: 0.5, A: 0.8},
									StrokeWidth: 2,
									LineCap:     LineCapRound,
									LineJoin:    LineJoinBevel,
									MiterLimit:  4,
									LineDashI:   5,
									LineDashII:  3,
								},
							},
							{
								Type:      ShapeTypeRect,
								Rect:      &RectArgs{X: 1, Y: 1, Width: 10, Height: 5, CornerRadius: 2},
								Transform: &Transform{A: 2, D: 2},
							},
							{
								Type:    ShapeTypeEllipse,
								Ellipse: &EllipseArgs{X: 3, Y: 3, RadiusX: 2, RadiusY: 1},
							},
						},
					},
					{
						Alpha:  0.5,
						Shapes: []*Shape{{Type: ShapeTypeKeep}},
					},
				},
			},
			{ImageKey: "img2", MatteKey: "img1"},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	m := sampleMovie()
	data, err := Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", got, m)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		data []byte
		want FormatVersion
	}{
		{[]byte{80, 75, 3, 4, 0, 0}, Legacy},
		{[]byte{80, 75, 3, 5}, Current},
		{[]byte{0x78, 0x9c, 1, 2}, Current},
		{[]byte{80, 75}, Current},
		{nil, Current},
	}
	for _, tc := range tests {
		if got := Detect(tc.data); got != tc.want {
			t.Errorf("Detect(%v) = %d, want %d", tc.data, got, tc.want)
		}
	}
}

func TestDecodeRejectsLegacy(t *testing.T) {
	_, err := Decode([]byte{80, 75, 3, 4, 1, 2, 3, 4})
	if !errors.Is(err, ErrVersion) {
		t.Errorf("got error %v, want ErrVersion", err)
	}
}

func TestMalformed(t *testing.T) {
	full := Marshal(sampleMovie())

	for _, data := range [][]byte{
		full[:len(full)-3],
		{0xff},
		protowire.AppendTag(nil, 4, protowire.BytesType), // missing length
	} {
		_, err := Unmarshal(data)
		if !errors.Is(err, ErrFormat) {
			t.Errorf("Unmarshal(%x...) error = %v, want ErrFormat", data[:min(len(data), 8)], err)
		}
	}

	if _, err := Inflate([]byte("not zlib")); !errors.Is(err, ErrFormat) {
		t.Errorf("Inflate error = %v, want ErrFormat", err)
	}
}

func TestUnknownFieldsSkipped(t *testing.T) {
	b := protowire.AppendTag(nil, 99, protowire.VarintType)
	b = protowire.AppendVarint(b, 12345)
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, "2.0.0")

	m, err := Unmarshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if m.Version != "2.0.0" {
		t.Errorf("version = %q", m.Version)
	}
}

const legacySpec = `{
  "ver": "1.1.0",
  "movie": {"viewBox": {"width": 100, "height": 50}, "fps": 15, "frames": 2},
  "images": {"bg": "bg"},
  "sprites": [{
    "imageKey": "bg",
    "frames": [
      {"alpha": 1, "layout": {"x": 0, "y": 0, "width": 100, "height": 50},
       "transform": {"a": 1, "b": 0, "c": 0, "d": 1, "tx": 2, "ty": 3},
       "shapes": [
         {"type": "shape", "pathArgs": {"d": "M0 0L5 5"},
          "styles": {"fill": [1, 0, 0, 1], "lineCap": "square", "lineJoin": "round",
                     "lineDash": [4, 2], "strokeWidth": 3}},
         {"type": "ellipse", "args": {"x": 5, "y": 6, "radiusX": 7, "radiusY": 8}}
       ]},
      {"alpha": 0.5, "shapes": [{"type": "keep"}]}
    ]
  }]
}`

func legacyArchive(t *testing.T) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for name, content := range map[string]string{
		"movie.spec": legacySpec,
		"bg.png":     "PNGDATA",
	} {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeLegacy(t *testing.T) {
	data := legacyArchive(t)
	if Detect(data) != Legacy {
		t.Fatal("archive not detected as legacy")
	}

	m, err := DecodeLegacy(data)
	if err != nil {
		t.Fatal(err)
	}

	if m.Version != "1.1.0" {
		t.Errorf("version = %q", m.Version)
	}
	wantParams := Params{ViewBoxWidth: 100, ViewBoxHeight: 50, FPS: 15, Frames: 2}
	if *m.Params != wantParams {
		t.Errorf("params = %+v, want %+v", *m.Params, wantParams)
	}
	if string(m.Images["bg"]) != "PNGDATA" {
		t.Errorf("image bg = %q", m.Images["bg"])
	}
	if len(m.Sprites) != 1 || len(m.Sprites[0].Frames) != 2 {
		t.Fatalf("unexpected sprite structure")
	}

	f0 := m.Sprites[0].Frames[0]
	if f0.Transform == nil || f0.Transform.TX != 2 || f0.Transform.TY != 3 {
		t.Errorf("transform = %+v", f0.Transform)
	}
	if len(f0.Shapes) != 2 {
		t.Fatalf("got %d shapes", len(f0.Shapes))
	}
	s := f0.Shapes[0]
	if s.Shape == nil || s.Shape.D != "M0 0L5 5" {
		t.Errorf("path args = %+v", s.Shape)
	}
	st := s.Styles
	if st.LineCap != LineCapSquare || st.LineJoin != LineJoinRound {
		t.Errorf("cap/join = %d/%d", st.LineCap, st.LineJoin)
	}
	if st.LineDashI != 4 || st.LineDashII != 2 || st.LineDashIII != 0 {
		t.Errorf("dash = %g %g %g", st.LineDashI, st.LineDashII, st.LineDashIII)
	}
	if *st.Fill != (RGBAColor{R: 1, A: 1}) {
		t.Errorf("fill = %+v", *st.Fill)
	}
	if st.Stroke != nil {
		t.Errorf("unexpected stroke %+v", *st.Stroke)
	}

	e := f0.Shapes[1]
	if e.Type != ShapeTypeEllipse || *e.Ellipse != (EllipseArgs{X: 5, Y: 6, RadiusX: 7, RadiusY: 8}) {
		t.Errorf("ellipse = %v %+v", e.Type, e.Ellipse)
	}

	if m.Sprites[0].Frames[1].Shapes[0].Type != ShapeTypeKeep {
		t.Error("keep marker lost")
	}
}

func TestDecodeLegacyMissingSpec(t *testing.T) {
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	if _, err := w.Create("other.txt"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	_, err := DecodeLegacy(buf.Bytes())
	if !errors.Is(err, ErrFormat) {
		t.Errorf("got %v, want ErrFormat", err)
	}
}
