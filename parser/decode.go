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
	"context"

	"golang.org/x/sync/errgroup"

	"seehuhn.de/go/svga/entity"
	"seehuhn.de/go/svga/movie"
)

// Decode turns the bytes of an archive into a frame model.
//
// SVGA 1.x archives are rejected with [movie.ErrVersion] unless
// opt.AllowLegacy is set.  Unless opt.DisableBitmapShim is set, the image
// assets are decoded in parallel before Decode returns.  Assets which fail
// to decode are left without a bitmap.
func Decode(ctx context.Context, data []byte, opt Options) (*entity.VideoEntity, error) {
	if len(data) == 0 {
		return nil, ErrNoData
	}

	var m *movie.Movie
	var err error
	if opt.AllowLegacy && movie.Detect(data) == movie.Legacy {
		m, err = movie.DecodeLegacy(data)
	} else {
		m, err = movie.Decode(data)
	}
	if err != nil {
		return nil, err
	}

	v := entity.New(m, nil)
	if !opt.DisableBitmapShim {
		if err := decodeBitmaps(ctx, v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// decodeBitmaps attaches decoded bitmaps to the image assets of v.
// It returns an error only if ctx is cancelled.
func decodeBitmaps(ctx context.Context, v *entity.VideoEntity) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, im := range v.Images {
		if im.Bitmap() != nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// each goroutine writes a different asset
			if img, err := im.Decode(); err == nil {
				im.SetBitmap(img)
			}
			return nil
		})
	}
	return g.Wait()
}
