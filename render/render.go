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

// Package render draws the frames of a decoded SVGA animation onto a
// canvas.
package render

import (
	"context"
	"image"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"seehuhn.de/go/svga/canvas"
	"seehuhn.de/go/svga/entity"
	"seehuhn.de/go/svga/raster"
	"seehuhn.de/go/svga/svgpath"
)

// minAlpha is the opacity below which sprites are not drawn.
const minAlpha = 0.05

// Renderer draws the frames of a mounted animation.
//
// A Renderer owns its bitmap and frame caches.  It is not safe for
// concurrent use.
type Renderer struct {
	// CacheFrames enables caching of fully rendered frames.
	CacheFrames bool

	// UseVisibilityGate makes DrawFrame do nothing while the target is
	// marked as not visible, see SetVisible.
	UseVisibilityGate bool

	Logger *log.Logger

	video   *entity.VideoEntity
	bitmaps map[string]image.Image
	hidden  bool

	frames         map[int]*image.RGBA
	cacheW, cacheH int
}

// Mount prepares v for drawing: all image assets are decoded before Mount
// returns.  Assets which fail to decode are logged and skipped, so that
// their sprites show only their vector shapes.  Mount returns an error
// only if ctx is cancelled.
func (r *Renderer) Mount(ctx context.Context, v *entity.VideoEntity) error {
	bitmaps := make(map[string]image.Image, len(v.Images))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for key, im := range v.Images {
		if bm := im.Bitmap(); bm != nil {
			bitmaps[key] = bm
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := im.Decode()
			if err != nil {
				r.logger().Printf("[Renderer] image %q: %v", key, err)
				return nil
			}
			mu.Lock()
			bitmaps[key] = img
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r.video = v
	r.bitmaps = bitmaps
	r.frames = nil
	return nil
}

// Video returns the mounted animation, or nil.
func (r *Renderer) Video() *entity.VideoEntity {
	return r.video
}

// Unmount releases the mounted animation and all cached data.
func (r *Renderer) Unmount() {
	r.video = nil
	r.bitmaps = nil
	r.frames = nil
}

// SetVisible records whether the drawing target is currently visible.
// It has no effect unless UseVisibilityGate is set.
func (r *Renderer) SetVisible(visible bool) {
	r.hidden = !visible
}

// DrawFrame clears dst and draws the frame with the given index.
// Sprites which have no frame at this index are skipped.
func (r *Renderer) DrawFrame(dst canvas.Canvas, index int) {
	if r.video == nil || (r.UseVisibilityGate && r.hidden) {
		return
	}

	if !r.CacheFrames {
		dst.Clear()
		r.drawSprites(dst, index)
		return
	}

	w, h := dst.Width(), dst.Height()
	if r.frames == nil || w != r.cacheW || h != r.cacheH {
		r.frames = make(map[int]*image.RGBA)
		r.cacheW, r.cacheH = w, h
	}
	img, ok := r.frames[index]
	if !ok {
		off := raster.NewCanvas(w, h)
		r.drawSprites(off, index)
		img = off.Image()
		r.frames[index] = img
	}
	dst.Clear()
	dst.DrawImage(img, 0, 0)
}

func (r *Renderer) drawSprites(c canvas.Canvas, index int) {
	v := r.video
	for _, s := range v.Sprites {
		if index < 0 || index >= len(s.Frames) {
			continue
		}
		f := s.Frames[index]
		if f.Alpha < minAlpha {
			continue
		}

		c.Save()
		c.SetGlobalAlpha(f.Alpha)
		c.Transform(f.Transform.Matrix())

		if bm := r.bitmaps[s.ImageKey]; bm != nil {
			if rep := v.Replace[s.ImageKey]; rep != nil {
				b := bm.Bounds()
				c.DrawImageScaled(rep, 0, 0, float64(b.Dx()), float64(b.Dy()))
			} else {
				if f.MaskPath != nil {
					c.BeginPath()
					svgpath.Interpret(f.MaskPath.D, c)
					c.Clip()
				}
				c.DrawImage(bm, 0, 0)
			}
		}

		if dyn := v.Dynamic[s.ImageKey]; dyn != nil {
			b := dyn.Bounds()
			x := (f.Layout.Width - float64(b.Dx())) / 2
			y := (f.Layout.Height - float64(b.Dy())) / 2
			c.DrawImage(dyn, x, y)
		}

		for _, shape := range f.Shapes {
			drawShape(c, shape)
		}
		c.Restore()
	}
}

func (r *Renderer) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}
