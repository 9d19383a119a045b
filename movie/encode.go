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
	"maps"
	"math"
	"slices"

	"github.com/klauspost/compress/zlib"
	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal encodes m as an uncompressed MovieEntity message.
// Zero-valued scalars are omitted, as in proto3.  Image entries are written
// in key order, so that the output is deterministic.
func Marshal(m *Movie) []byte {
	var b []byte
	b = appendString(b, 1, m.Version)
	if m.Params != nil {
		b = appendMessage(b, 2, m.Params.marshal())
	}
	for _, key := range slices.Sorted(maps.Keys(m.Images)) {
		var entry []byte
		entry = appendString(entry, 1, key)
		entry = protowire.AppendTag(entry, 2, protowire.BytesType)
		entry = protowire.AppendBytes(entry, m.Images[key])
		b = appendMessage(b, 3, entry)
	}
	for _, s := range m.Sprites {
		b = appendMessage(b, 4, s.marshal())
	}
	return b
}

// Encode produces a complete SVGA 2.x archive for m.
func Encode(m *Movie) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := zlib.NewWriter(buf)
	if _, err := w.Write(Marshal(m)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Params) marshal() []byte {
	var b []byte
	b = appendFloat(b, 1, p.ViewBoxWidth)
	b = appendFloat(b, 2, p.ViewBoxHeight)
	b = appendInt32(b, 3, p.FPS)
	b = appendInt32(b, 4, p.Frames)
	return b
}

func (s *Sprite) marshal() []byte {
	var b []byte
	b = appendString(b, 1, s.ImageKey)
	for _, f := range s.Frames {
		b = appendMessage(b, 2, f.marshal())
	}
	b = appendString(b, 3, s.MatteKey)
	return b
}

func (f *Frame) marshal() []byte {
	var b []byte
	b = appendFloat(b, 1, f.Alpha)
	if f.Layout != nil {
		l := f.Layout
		b = appendMessage(b, 2, appendFloats(nil, l.X, l.Y, l.Width, l.Height))
	}
	if f.Transform != nil {
		b = appendMessage(b, 3, f.Transform.marshal())
	}
	b = appendString(b, 4, f.ClipPath)
	for _, s := range f.Shapes {
		b = appendMessage(b, 5, s.marshal())
	}
	return b
}

func (t *Transform) marshal() []byte {
	return appendFloats(nil, t.A, t.B, t.C, t.D, t.TX, t.TY)
}

func (s *Shape) marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, int32(s.Type))
	if s.Shape != nil {
		b = appendMessage(b, 2, appendString(nil, 1, s.Shape.D))
	}
	if r := s.Rect; r != nil {
		b = appendMessage(b, 3, appendFloats(nil, r.X, r.Y, r.Width, r.Height, r.CornerRadius))
	}
	if e := s.Ellipse; e != nil {
		b = appendMessage(b, 4, appendFloats(nil, e.X, e.Y, e.RadiusX, e.RadiusY))
	}
	if s.Styles != nil {
		b = appendMessage(b, 10, s.Styles.marshal())
	}
	if s.Transform != nil {
		b = appendMessage(b, 11, s.Transform.marshal())
	}
	return b
}

func (s *ShapeStyle) marshal() []byte {
	var b []byte
	if c := s.Fill; c != nil {
		b = appendMessage(b, 1, appendFloats(nil, c.R, c.G, c.B, c.A))
	}
	if c := s.Stroke; c != nil {
		b = appendMessage(b, 2, appendFloats(nil, c.R, c.G, c.B, c.A))
	}
	b = appendFloat(b, 3, s.StrokeWidth)
	b = appendInt32(b, 4, int32(s.LineCap))
	b = appendInt32(b, 5, int32(s.LineJoin))
	b = appendFloat(b, 6, s.MiterLimit)
	b = appendFloat(b, 7, s.LineDashI)
	b = appendFloat(b, 8, s.LineDashII)
	b = appendFloat(b, 9, s.LineDashIII)
	return b
}

// appendFloats writes the values as fields 1, 2, ...
func appendFloats(b []byte, vals ...float32) []byte {
	for i, v := range vals {
		b = appendFloat(b, protowire.Number(i+1), v)
	}
	return b
}

func appendFloat(b []byte, num protowire.Number, v float32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(v))
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}
