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

// Package parser loads and decodes SVGA archives.
//
// Archives are decoded by a [Decoder], either on the calling goroutine
// ([Inline]) or on a pool of goroutines ([Worker]).  A [Parser] combines a
// Decoder with an optional cache of decoded animations.
package parser

import (
	"context"
	"log"

	"seehuhn.de/go/svga/cache"
	"seehuhn.de/go/svga/entity"
)

// Parser loads animations by URL.
type Parser struct {
	// Decoder decodes archives.  If nil, archives are decoded inline.
	Decoder Decoder

	// Cache, if set, holds decoded animations by URL.
	Cache cache.Store

	Options Options

	Logger *log.Logger
}

// Load returns the animation stored at url.  Cache errors are logged and
// otherwise ignored.
func (p *Parser) Load(ctx context.Context, url string) (*entity.VideoEntity, error) {
	if url == "" {
		return nil, &Error{Err: ErrNoURL}
	}

	if p.Cache != nil {
		v, ok, err := p.Cache.Get(url)
		if err != nil {
			p.logger().Printf("[Parser] cache lookup %s: %v", url, err)
		} else if ok {
			if !p.Options.DisableBitmapShim {
				if err := decodeBitmaps(ctx, v); err != nil {
					return nil, &Error{URL: url, Err: err}
				}
			}
			return v, nil
		}
	}

	v, err := p.submit(ctx, NewRequest(url, nil, p.Options))
	if err != nil {
		return nil, err
	}

	if p.Cache != nil {
		if err := p.Cache.Put(url, v); err != nil {
			p.logger().Printf("[Parser] cache store %s: %v", url, err)
		}
	}
	return v, nil
}

// Parse decodes an archive which is already in memory.  The cache is not
// used.
func (p *Parser) Parse(ctx context.Context, data []byte) (*entity.VideoEntity, error) {
	return p.submit(ctx, NewRequest("", data, p.Options))
}

func (p *Parser) submit(ctx context.Context, req Request) (*entity.VideoEntity, error) {
	d := p.Decoder
	if d == nil {
		d = &Inline{}
	}
	resp := d.Submit(ctx, req)
	if resp.Err != nil {
		return nil, resp.Err
	}
	return resp.Video, nil
}

func (p *Parser) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.Default()
}
