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
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
	"github.com/tidwall/gjson"
)

// specFile is the name of the JSON description inside a 1.x archive.
const specFile = "movie.spec"

// DecodeLegacy reads an SVGA 1.x archive.
//
// The JSON description is mapped onto the same [Movie] structure which
// [Unmarshal] produces.  Images are read from "<key>.png"; keys without a
// corresponding file are left out of the image table.
func DecodeLegacy(data []byte) (*Movie, error) {
	if Detect(data) != Legacy {
		return nil, fmt.Errorf("%w: not a version 1.x archive", ErrVersion)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	f, ok := files[specFile]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrFormat, specFile)
	}
	spec, err := readZipFile(f)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(spec) {
		return nil, fmt.Errorf("%w: invalid JSON in %s", ErrFormat, specFile)
	}
	root := gjson.ParseBytes(spec)

	m := &Movie{
		Version: root.Get("ver").String(),
		Params: &Params{
			ViewBoxWidth:  float32(root.Get("movie.viewBox.width").Float()),
			ViewBoxHeight: float32(root.Get("movie.viewBox.height").Float()),
			FPS:           int32(root.Get("movie.fps").Int()),
			Frames:        int32(root.Get("movie.frames").Int()),
		},
		Images: make(map[string][]byte),
	}
	if m.Version == "" {
		m.Version = root.Get("version").String()
	}

	var imgErr error
	root.Get("images").ForEach(func(key, _ gjson.Result) bool {
		f, ok := files[key.String()+".png"]
		if !ok {
			return true
		}
		b, err := readZipFile(f)
		if err != nil {
			imgErr = err
			return false
		}
		m.Images[key.String()] = b
		return true
	})
	if imgErr != nil {
		return nil, imgErr
	}

	for _, s := range root.Get("sprites").Array() {
		m.Sprites = append(m.Sprites, legacySprite(s))
	}
	return m, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, f.Name, err)
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, f.Name, err)
	}
	return b, nil
}

func legacySprite(s gjson.Result) *Sprite {
	sprite := &Sprite{
		ImageKey: s.Get("imageKey").String(),
		MatteKey: s.Get("matteKey").String(),
	}
	for _, f := range s.Get("frames").Array() {
		sprite.Frames = append(sprite.Frames, legacyFrame(f))
	}
	return sprite
}

func legacyFrame(f gjson.Result) *Frame {
	frame := &Frame{
		Alpha:    float32(f.Get("alpha").Float()),
		ClipPath: f.Get("clipPath").String(),
	}
	if l := f.Get("layout"); l.Exists() {
		frame.Layout = &Layout{
			X:      float32(l.Get("x").Float()),
			Y:      float32(l.Get("y").Float()),
			Width:  float32(l.Get("width").Float()),
			Height: float32(l.Get("height").Float()),
		}
	}
	frame.Transform = legacyTransform(f.Get("transform"))
	for _, s := range f.Get("shapes").Array() {
		frame.Shapes = append(frame.Shapes, legacyShape(s))
	}
	return frame
}

func legacyTransform(t gjson.Result) *Transform {
	if !t.Exists() {
		return nil
	}
	return &Transform{
		A:  float32(t.Get("a").Float()),
		B:  float32(t.Get("b").Float()),
		C:  float32(t.Get("c").Float()),
		D:  float32(t.Get("d").Float()),
		TX: float32(t.Get("tx").Float()),
		TY: float32(t.Get("ty").Float()),
	}
}

func legacyShape(s gjson.Result) *Shape {
	shape := &Shape{
		Transform: legacyTransform(s.Get("transform")),
	}

	args := s.Get("args")
	if !args.Exists() {
		args = s.Get("pathArgs")
	}
	switch s.Get("type").String() {
	case "rect":
		shape.Type = ShapeTypeRect
		shape.Rect = &RectArgs{
			X:            float32(args.Get("x").Float()),
			Y:            float32(args.Get("y").Float()),
			Width:        float32(args.Get("width").Float()),
			Height:       float32(args.Get("height").Float()),
			CornerRadius: float32(args.Get("cornerRadius").Float()),
		}
	case "ellipse":
		shape.Type = ShapeTypeEllipse
		shape.Ellipse = &EllipseArgs{
			X:       float32(args.Get("x").Float()),
			Y:       float32(args.Get("y").Float()),
			RadiusX: float32(args.Get("radiusX").Float()),
			RadiusY: float32(args.Get("radiusY").Float()),
		}
	case "keep":
		shape.Type = ShapeTypeKeep
	default:
		shape.Type = ShapeTypeShape
		shape.Shape = &ShapeArgs{D: args.Get("d").String()}
	}

	if st := s.Get("styles"); st.Exists() {
		shape.Styles = legacyStyle(st)
	}
	return shape
}

func legacyStyle(st gjson.Result) *ShapeStyle {
	style := &ShapeStyle{
		Fill:        legacyColor(st.Get("fill")),
		Stroke:      legacyColor(st.Get("stroke")),
		StrokeWidth: float32(st.Get("strokeWidth").Float()),
		MiterLimit:  float32(st.Get("miterLimit").Float()),
	}

	switch st.Get("lineCap").String() {
	case "round":
		style.LineCap = LineCapRound
	case "square":
		style.LineCap = LineCapSquare
	}
	switch st.Get("lineJoin").String() {
	case "round":
		style.LineJoin = LineJoinRound
	case "bevel":
		style.LineJoin = LineJoinBevel
	}

	dash := st.Get("lineDash").Array()
	slots := [...]*float32{&style.LineDashI, &style.LineDashII, &style.LineDashIII}
	for i, v := range dash {
		if i >= len(slots) {
			break
		}
		*slots[i] = float32(v.Float())
	}
	return style
}

// legacyColor reads a [r, g, b, a] array.
func legacyColor(c gjson.Result) *RGBAColor {
	if !c.IsArray() {
		return nil
	}
	v := c.Array()
	if len(v) < 4 {
		return nil
	}
	return &RGBAColor{
		R: float32(v[0].Float()),
		G: float32(v[1].Float()),
		B: float32(v[2].Float()),
		A: float32(v[3].Float()),
	}
}
