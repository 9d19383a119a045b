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

// Package cache stores decoded animations, so that an archive needs to be
// downloaded and decoded only once.
//
// Entries are keyed by the source URL of the archive.  Values are frame
// models with the raw image data of their assets.  Decoded bitmaps and the
// replacement and dynamic images are not stored.  There is no expiry and
// no eviction.
package cache

import (
	"bytes"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"image"
	"sync"

	"github.com/quasilyte/gdata/v2"

	"seehuhn.de/go/svga/entity"
)

func init() {
	gob.Register(&entity.PathShape{})
	gob.Register(&entity.RectShape{})
	gob.Register(&entity.EllipseShape{})
}

// Store is a key/value store for decoded animations.
type Store interface {
	// Get returns the entry for key.  The boolean result is false if
	// there is no such entry.
	Get(key string) (*entity.VideoEntity, bool, error)

	Put(key string, v *entity.VideoEntity) error

	// Delete removes the entry for key.  Deleting a missing entry is not
	// an error.
	Delete(key string) error
}

// Memory is a Store which keeps encoded entries in memory.
// The zero value is an empty store, ready to use.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func (m *Memory) Get(key string) (*entity.VideoEntity, bool, error) {
	m.mu.Lock()
	data, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		return nil, false, nil
	}
	v, err := Unmarshal(data)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (m *Memory) Put(key string, v *entity.VideoEntity) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = data
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// objectKey is the gdata object which holds all entries.
const objectKey = "svga_file"

// Disk is a Store which keeps entries in the per-user data directory of
// the application.
type Disk struct {
	m *gdata.Manager
}

// OpenDisk opens the store for the given application name.
func OpenDisk(appName string) (*Disk, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return &Disk{m: m}, nil
}

func (d *Disk) Get(key string) (*entity.VideoEntity, bool, error) {
	prop := propKey(key)
	if !d.m.ObjectPropExists(objectKey, prop) {
		return nil, false, nil
	}
	data, err := d.m.LoadObjectProp(objectKey, prop)
	if err != nil {
		return nil, false, fmt.Errorf("loading %s: %w", key, err)
	}
	v, err := Unmarshal(data)
	if err != nil {
		return nil, false, fmt.Errorf("loading %s: %w", key, err)
	}
	return v, true, nil
}

func (d *Disk) Put(key string, v *entity.VideoEntity) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	if err := d.m.SaveObjectProp(objectKey, propKey(key), data); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func (d *Disk) Delete(key string) error {
	prop := propKey(key)
	if !d.m.ObjectPropExists(objectKey, prop) {
		return nil
	}
	if err := d.m.DeleteObjectProp(objectKey, prop); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// propKey maps a URL to a name which is safe to use as a file name.
func propKey(key string) string {
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// record is the stored form of an animation.  Shape lists are kept once in
// Shapes and referenced by index, because frames which keep the shapes of
// the previous frame share its list.
type record struct {
	Version string
	Size    entity.Size
	FPS     int
	Frames  int
	Images  map[string]*entity.Image
	Shapes  [][]entity.Shape
	Sprites []spriteRecord
}

type spriteRecord struct {
	ImageKey string
	MatteKey string
	Frames   []frameRecord
}

type frameRecord struct {
	Alpha     float64
	Transform entity.Transform
	Layout    entity.Rect
	ClipPath  string
	NX, NY    float64
	MaskPath  *entity.PathShape

	// Shapes is an index into record.Shapes, or -1 for no shapes.
	Shapes int
}

// listID identifies a shape list by its backing array.
type listID struct {
	first *entity.Shape
	n     int
}

// Marshal encodes v for storage.
func Marshal(v *entity.VideoEntity) ([]byte, error) {
	rec := &record{
		Version: v.Version,
		Size:    v.Size,
		FPS:     v.FPS,
		Frames:  v.Frames,
		Images:  v.Images,
		Sprites: make([]spriteRecord, len(v.Sprites)),
	}
	seen := make(map[listID]int)
	for i, sprite := range v.Sprites {
		sr := spriteRecord{
			ImageKey: sprite.ImageKey,
			MatteKey: sprite.MatteKey,
			Frames:   make([]frameRecord, len(sprite.Frames)),
		}
		for j, f := range sprite.Frames {
			fr := frameRecord{
				Alpha:     f.Alpha,
				Transform: f.Transform,
				Layout:    f.Layout,
				ClipPath:  f.ClipPath,
				NX:        f.NX,
				NY:        f.NY,
				MaskPath:  f.MaskPath,
				Shapes:    -1,
			}
			if len(f.Shapes) > 0 {
				id := listID{&f.Shapes[0], len(f.Shapes)}
				idx, ok := seen[id]
				if !ok {
					idx = len(rec.Shapes)
					rec.Shapes = append(rec.Shapes, f.Shapes)
					seen[id] = idx
				}
				fr.Shapes = idx
			}
			sr.Frames[j] = fr
		}
		rec.Sprites[i] = sr
	}

	buf := &bytes.Buffer{}
	if err := gob.NewEncoder(buf).Encode(rec); err != nil {
		return nil, fmt.Errorf("encoding animation: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes an animation stored by Marshal.  Frames which shared a
// shape list before encoding share one again.
func Unmarshal(data []byte) (*entity.VideoEntity, error) {
	rec := &record{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(rec); err != nil {
		return nil, fmt.Errorf("decoding animation: %w", err)
	}

	v := &entity.VideoEntity{
		Version: rec.Version,
		Size:    rec.Size,
		FPS:     rec.FPS,
		Frames:  rec.Frames,
		Images:  rec.Images,
		Replace: make(map[string]image.Image),
		Dynamic: make(map[string]image.Image),
		Sprites: make([]*entity.Sprite, len(rec.Sprites)),
	}
	if v.Images == nil {
		v.Images = make(map[string]*entity.Image)
	}
	for i, sr := range rec.Sprites {
		sprite := &entity.Sprite{
			ImageKey: sr.ImageKey,
			MatteKey: sr.MatteKey,
			Frames:   make([]*entity.Frame, len(sr.Frames)),
		}
		for j, fr := range sr.Frames {
			f := &entity.Frame{
				Alpha:     fr.Alpha,
				Transform: fr.Transform,
				Layout:    fr.Layout,
				ClipPath:  fr.ClipPath,
				NX:        fr.NX,
				NY:        fr.NY,
				MaskPath:  fr.MaskPath,
			}
			if fr.Shapes >= 0 {
				if fr.Shapes >= len(rec.Shapes) {
					return nil, fmt.Errorf("decoding animation: shape list %d out of range", fr.Shapes)
				}
				f.Shapes = rec.Shapes[fr.Shapes]
			}
			sprite.Frames[j] = f
		}
		v.Sprites[i] = sprite
	}
	return v, nil
}
