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
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
	"google.golang.org/protobuf/encoding/protowire"
)

var (
	// ErrVersion is returned for archives in a format version which the
	// decoder does not support.
	ErrVersion = errors.New("unsupported SVGA version")

	// ErrFormat is returned when an archive is malformed.
	ErrFormat = errors.New("malformed SVGA data")
)

// FormatVersion distinguishes the two archive layouts.
type FormatVersion int

// These are the archive layouts recognized by [Detect].
const (
	Current FormatVersion = 2
	Legacy  FormatVersion = 1
)

// zipMagic is the local file header signature which starts every ZIP file.
var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// Detect classifies an archive by its first four bytes.
// ZIP files are [Legacy] archives, everything else is [Current].
func Detect(data []byte) FormatVersion {
	if bytes.HasPrefix(data, zipMagic) {
		return Legacy
	}
	return Current
}

// Inflate decompresses the zlib stream of an SVGA 2.x archive.
func Inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return out, nil
}

// Decode reads an SVGA 2.x archive.  Legacy archives are rejected with
// [ErrVersion]; use [DecodeLegacy] for these.
func Decode(data []byte) (*Movie, error) {
	if Detect(data) != Current {
		return nil, fmt.Errorf("%w: this decoder only supports version 2", ErrVersion)
	}
	raw, err := Inflate(data)
	if err != nil {
		return nil, err
	}
	return Unmarshal(raw)
}

// Unmarshal decodes an uncompressed MovieEntity message.
// Unknown fields are skipped.
func Unmarshal(b []byte) (*Movie, error) {
	m := &Movie{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.Version), nil
		case 2:
			m.Params = &Params{}
			return consumeMessage(typ, b, m.Params.unmarshal)
		case 3:
			return consumeMessage(typ, b, func(b []byte) error {
				if m.Images == nil {
					m.Images = make(map[string][]byte)
				}
				return unmarshalImage(b, m.Images)
			})
		case 4:
			s := &Sprite{}
			n, err := consumeMessage(typ, b, s.unmarshal)
			if n > 0 {
				m.Sprites = append(m.Sprites, s)
			}
			return n, err
		}
		return 0, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return m, nil
}

func unmarshalImage(b []byte, images map[string][]byte) error {
	var key string
	var value []byte
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &key), nil
		case 2:
			if typ != protowire.BytesType {
				return 0, nil
			}
			v, n := protowire.ConsumeBytes(b)
			if n >= 0 {
				value = bytes.Clone(v)
			}
			return n, nil
		}
		return 0, nil
	})
	if err != nil {
		return err
	}
	images[key] = value
	return nil
}

func (p *Params) unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeFloat(typ, b, &p.ViewBoxWidth), nil
		case 2:
			return consumeFloat(typ, b, &p.ViewBoxHeight), nil
		case 3:
			return consumeInt32(typ, b, &p.FPS), nil
		case 4:
			return consumeInt32(typ, b, &p.Frames), nil
		}
		return 0, nil
	})
}

func (s *Sprite) unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &s.ImageKey), nil
		case 2:
			f := &Frame{}
			n, err := consumeMessage(typ, b, f.unmarshal)
			if n > 0 {
				s.Frames = append(s.Frames, f)
			}
			return n, err
		case 3:
			return consumeString(typ, b, &s.MatteKey), nil
		}
		return 0, nil
	})
}

func (f *Frame) unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeFloat(typ, b, &f.Alpha), nil
		case 2:
			f.Layout = &Layout{}
			return consumeMessage(typ, b, f.Layout.unmarshal)
		case 3:
			f.Transform = &Transform{}
			return consumeMessage(typ, b, f.Transform.unmarshal)
		case 4:
			return consumeString(typ, b, &f.ClipPath), nil
		case 5:
			s := &Shape{}
			n, err := consumeMessage(typ, b, s.unmarshal)
			if n > 0 {
				f.Shapes = append(f.Shapes, s)
			}
			return n, err
		}
		return 0, nil
	})
}

func (l *Layout) unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeFloat(typ, b, &l.X), nil
		case 2:
			return consumeFloat(typ, b, &l.Y), nil
		case 3:
			return consumeFloat(typ, b, &l.Width), nil
		case 4:
			return consumeFloat(typ, b, &l.Height), nil
		}
		return 0, nil
	})
}

func (t *Transform) unmarshal(b []byte) error {
	fields := [...]*float32{&t.A, &t.B, &t.C, &t.D, &t.TX, &t.TY}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num >= 1 && int(num) <= len(fields) {
			return consumeFloat(typ, b, fields[num-1]), nil
		}
		return 0, nil
	})
}

func (s *Shape) unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			var v int32
			n := consumeInt32(typ, b, &v)
			s.Type = ShapeType(v)
			return n, nil
		case 2:
			s.Shape = &ShapeArgs{}
			return consumeMessage(typ, b, func(b []byte) error {
				return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
					if num == 1 {
						return consumeString(typ, b, &s.Shape.D), nil
					}
					return 0, nil
				})
			})
		case 3:
			s.Rect = &RectArgs{}
			return consumeMessage(typ, b, s.Rect.unmarshal)
		case 4:
			s.Ellipse = &EllipseArgs{}
			return consumeMessage(typ, b, s.Ellipse.unmarshal)
		case 10:
			s.Styles = &ShapeStyle{}
			return consumeMessage(typ, b, s.Styles.unmarshal)
		case 11:
			s.Transform = &Transform{}
			return consumeMessage(typ, b, s.Transform.unmarshal)
		}
		return 0, nil
	})
}

func (r *RectArgs) unmarshal(b []byte) error {
	fields := [...]*float32{&r.X, &r.Y, &r.Width, &r.Height, &r.CornerRadius}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num >= 1 && int(num) <= len(fields) {
			return consumeFloat(typ, b, fields[num-1]), nil
		}
		return 0, nil
	})
}

func (e *EllipseArgs) unmarshal(b []byte) error {
	fields := [...]*float32{&e.X, &e.Y, &e.RadiusX, &e.RadiusY}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num >= 1 && int(num) <= len(fields) {
			return consumeFloat(typ, b, fields[num-1]), nil
		}
		return 0, nil
	})
}

func (s *ShapeStyle) unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			s.Fill = &RGBAColor{}
			return consumeMessage(typ, b, s.Fill.unmarshal)
		case 2:
			s.Stroke = &RGBAColor{}
			return consumeMessage(typ, b, s.Stroke.unmarshal)
		case 3:
			return consumeFloat(typ, b, &s.StrokeWidth), nil
		case 4:
			var v int32
			n := consumeInt32(typ, b, &v)
			s.LineCap = LineCap(v)
			return n, nil
		case 5:
			var v int32
			n := consumeInt32(typ, b, &v)
			s.LineJoin = LineJoin(v)
			return n, nil
		case 6:
			return consumeFloat(typ, b, &s.MiterLimit), nil
		case 7:
			return consumeFloat(typ, b, &s.LineDashI), nil
		case 8:
			return consumeFloat(typ, b, &s.LineDashII), nil
		case 9:
			return consumeFloat(typ, b, &s.LineDashIII), nil
		}
		return 0, nil
	})
}

func (c *RGBAColor) unmarshal(b []byte) error {
	fields := [...]*float32{&c.R, &c.G, &c.B, &c.A}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num >= 1 && int(num) <= len(fields) {
			return consumeFloat(typ, b, fields[num-1]), nil
		}
		return 0, nil
	})
}

// fieldFunc decodes the value of a single field.  It returns the number of
// bytes consumed, 0 to have the field skipped, or a negative protowire
// error code.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

// walk calls fn for every field of the message b.
func walk(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}

func consumeFloat(typ protowire.Type, b []byte, dst *float32) int {
	if typ != protowire.Fixed32Type {
		return 0
	}
	v, n := protowire.ConsumeFixed32(b)
	if n >= 0 {
		*dst = math.Float32frombits(v)
	}
	return n
}

func consumeInt32(typ protowire.Type, b []byte, dst *int32) int {
	if typ != protowire.VarintType {
		return 0
	}
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		*dst = int32(v)
	}
	return n
}

func consumeString(typ protowire.Type, b []byte, dst *string) int {
	if typ != protowire.BytesType {
		return 0
	}
	v, n := protowire.ConsumeString(b)
	if n >= 0 {
		*dst = v
	}
	return n
}

// consumeMessage decodes an embedded message using parse.
func consumeMessage(typ protowire.Type, b []byte, parse func([]byte) error) (int, error) {
	if typ != protowire.BytesType {
		return 0, nil
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n, nil
	}
	return n, parse(v)
}
