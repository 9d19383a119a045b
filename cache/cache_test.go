package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"image"
	"reflect"
	"slices"
	"testing"
	"time"

	"seehuhn.de/go/svga/entity"
	"seehuhn.de/go/svga/testcases"
)

func sample(t *testing.T, name string) *entity.VideoEntity {
	t.Helper()
	c, ok := testcases.Find(name)
	if !ok {
		t.Fatalf("sample %q not found", name)
	}
	return entity.New(c.Movie, nil)
}

// checkStore runs a round trip through s for every sample.
func checkStore(t *testing.T, s Store) {
	t.Helper()
	for group, cases := range testcases.All {
		for _, c := range cases {
			key := "https://example.com/" + group + "/" + c.Name + ".svga"
			want := entity.New(c.Movie, nil)
			if err := s.Put(key, want); err != nil {
				t.Fatalf("%s: %v", c.Name, err)
			}

			got, ok, err := s.Get(key)
			if err != nil || !ok {
				t.Fatalf("%s: Get = %t, %v", c.Name, ok, err)
			}
			if !reflect.DeepEqual(got.Sprites, want.Sprites) {
				t.Errorf("%s: sprites differ after round trip", c.Name)
			}
			if wantShared, gotShared := sharedLists(want), sharedLists(got); !slices.Equal(gotShared, wantShared) {
				t.Errorf("%s: shared shape lists %v, want %v", c.Name, gotShared, wantShared)
			}
			if got.Size != want.Size || got.FPS != want.FPS || got.Frames != want.Frames {
				t.Errorf("%s: parameters differ after round trip", c.Name)
			}
			for k, im := range want.Images {
				if string(got.Images[k].Data) != string(im.Data) {
					t.Errorf("%s: image %q differs", c.Name, k)
				}
			}
			if got.Replace == nil || got.Dynamic == nil {
				t.Errorf("%s: element tables not initialised", c.Name)
			}

			if err := s.Delete(key); err != nil {
				t.Fatal(err)
			}
			if _, ok, _ := s.Get(key); ok {
				t.Errorf("%s: entry still present after Delete", c.Name)
			}
		}
	}
}

// sharedLists returns "sprite/frame" for every frame which uses the same
// shape list as the frame before it.
func sharedLists(v *entity.VideoEntity) []string {
	var res []string
	for i, sprite := range v.Sprites {
		for j := 1; j < len(sprite.Frames); j++ {
			a, b := sprite.Frames[j-1].Shapes, sprite.Frames[j].Shapes
			if len(a) > 0 && len(b) > 0 && &a[0] == &b[0] {
				res = append(res, fmt.Sprintf("%d/%d", i, j))
			}
		}
	}
	return res
}

func TestKeepSharedAfterRoundTrip(t *testing.T) {
	v := sample(t, "shape_keep")
	if len(sharedLists(v)) == 0 {
		t.Fatal("sample has no keep frames")
	}

	m := &Memory{}
	if err := m.Put("shape_keep", v); err != nil {
		t.Fatal(err)
	}
	got, _, err := m.Get("shape_keep")
	if err != nil {
		t.Fatal(err)
	}
	f0, f1 := got.Sprites[0].Frames[0], got.Sprites[0].Frames[1]
	if len(f1.Shapes) == 0 || &f0.Shapes[0] != &f1.Shapes[0] {
		t.Error("keep frame has its own copy of the shape list")
	}
}

func TestUnmarshalBadShapeIndex(t *testing.T) {
	rec := &record{
		Sprites: []spriteRecord{{Frames: []frameRecord{{Shapes: 3}}}},
	}
	buf := &bytes.Buffer{}
	if err := gob.NewEncoder(buf).Encode(rec); err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(buf.Bytes()); err == nil {
		t.Error("out of range shape list accepted")
	}
}

func TestMemory(t *testing.T) {
	m := &Memory{}
	if _, ok, err := m.Get("missing"); ok || err != nil {
		t.Errorf("empty store: Get = %t, %v", ok, err)
	}
	if err := m.Delete("missing"); err != nil {
		t.Error(err)
	}
	checkStore(t, m)
	if m.Len() != 0 {
		t.Errorf("%d entries left", m.Len())
	}
}

func TestDisk(t *testing.T) {
	d, err := OpenDisk(fmt.Sprintf("svga_cache_test_%d", time.Now().UnixNano()))
	if err != nil {
		t.Skipf("no data directory: %v", err)
	}
	checkStore(t, d)
}

func TestMarshalDropsImages(t *testing.T) {
	v := sample(t, "bitmap")
	v.Replace["checker"] = image.NewRGBA(image.Rect(0, 0, 2, 2))
	v.Images["checker"].SetBitmap(image.NewRGBA(image.Rect(0, 0, 16, 16)))

	data, err := Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if v.Replace["checker"] == nil {
		t.Error("Marshal modified its argument")
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Replace) != 0 {
		t.Error("replacement images were stored")
	}
	if got.Images["checker"].Bitmap() != nil {
		t.Error("decoded bitmap was stored")
	}
}

func TestUnmarshalError(t *testing.T) {
	if _, err := Unmarshal([]byte("not gob data")); err == nil {
		t.Error("garbage accepted")
	}
}

func TestPropKey(t *testing.T) {
	a := propKey("https://example.com/a.svga")
	b := propKey("https://example.com/b.svga")
	if a == b || len(a) != 40 {
		t.Errorf("keys %q and %q", a, b)
	}
}
