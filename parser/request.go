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

package parser

import (
	"github.com/google/uuid"

	"seehuhn.de/go/svga/entity"
)

// Options control how an archive is decoded.
type Options struct {
	// DisableBitmapShim returns the animation without decoding its image
	// assets.  The renderer then decodes them when the animation is
	// mounted.
	DisableBitmapShim bool

	// AllowLegacy enables decoding of SVGA 1.x archives.
	AllowLegacy bool
}

// Request asks a [Decoder] to decode one archive.  If Data is empty, the
// archive is fetched from URL.
type Request struct {
	ID      uuid.UUID
	URL     string
	Data    []byte
	Options Options
}

// NewRequest returns a request with a fresh ID.
func NewRequest(url string, data []byte, opt Options) Request {
	return Request{ID: uuid.New(), URL: url, Data: data, Options: opt}
}

// Response is the reply to a Request.  Exactly one of Video and Err is
// set.
type Response struct {
	ID    uuid.UUID
	Video *entity.VideoEntity
	Err   *Error
}

// Error is a decode failure reported by a [Decoder].
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	if e.URL == "" {
		return "[SVGA Parser Error] " + e.Err.Error()
	}
	return "[SVGA Parser Error] " + e.URL + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
