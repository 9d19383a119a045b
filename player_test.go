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

package svga

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"seehuhn.de/go/svga/canvas"
	"seehuhn.de/go/svga/entity"
	"seehuhn.de/go/svga/testcases"
)

// clock is a manually advanced time source.
type clock struct {
	t0, t time.Time
}

func newClock() *clock {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &clock{t0: t, t: t}
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) at(ms int) {
	c.t = c.t0.Add(time.Duration(ms) * time.Millisecond)
}

// events records the sequence of player events and shown frames.
type events struct {
	mu     sync.Mutex
	names  []string
	frames []int
}

func (e *events) add(name string) {
	e.mu.Lock()
	e.names = append(e.names, name)
	e.mu.Unlock()
}

func (e *events) count(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, s := range e.names {
		if s == name {
			n++
		}
	}
	return n
}

// newPlayer returns a player with the sample "fade" mounted.  The sample
// has 10 frames at 10 fps.
func newPlayer(t *testing.T, cfg Config) (*Player, *clock, *events, *canvas.Recorder) {
	t.Helper()
	c, ok := testcases.Find("fade")
	if !ok {
		t.Fatal("sample not found")
	}

	rec := canvas.NewRecorder(1, 1)
	p, err := New(rec, cfg)
	if err != nil {
		t.Fatal(err)
	}
	clk := newClock()
	ev := &events{}
	p.Now = clk.now
	p.OnStart = func() { ev.add("start") }
	p.OnResume = func() { ev.add("resume") }
	p.OnPause = func() { ev.add("pause") }
	p.OnStop = func() { ev.add("stop") }
	p.OnEnd = func() { ev.add("end") }
	p.OnProcess = func() {
		ev.mu.Lock()
		ev.frames = append(ev.frames, p.CurrentFrame())
		ev.mu.Unlock()
	}

	if err := p.Mount(context.Background(), entity.New(c.Movie, nil)); err != nil {
		t.Fatal(err)
	}
	return p, clk, ev, rec
}

func TestNew(t *testing.T) {
	if _, err := New(nil, Config{}); !errors.Is(err, ErrCanvas) {
		t.Errorf("nil canvas: got %v, want ErrCanvas", err)
	}
	rec := canvas.NewRecorder(1, 1)
	if _, err := New(rec, Config{StartFrame: 5, EndFrame: 2}); !errors.Is(err, ErrFrameRange) {
		t.Errorf("bad range: got %v, want ErrFrameRange", err)
	}
}

func TestNotMounted(t *testing.T) {
	p, err := New(canvas.NewRecorder(1, 1), Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Start(); !errors.Is(err, ErrNotMounted) {
		t.Errorf("Start: got %v, want ErrNotMounted", err)
	}
	if err := p.Resume(); !errors.Is(err, ErrNotMounted) {
		t.Errorf("Resume: got %v, want ErrNotMounted", err)
	}
	p.Pause()
	p.Stop()
	p.Clear()
	if p.Frame() {
		t.Error("Frame reported a running animation")
	}
}

func TestMount(t *testing.T) {
	p, _, _, rec := newPlayer(t, Config{})
	if got := p.TotalFrames(); got != 9 {
		t.Errorf("TotalFrames = %d, want 9", got)
	}
	if p.CurrentFrame() != 0 {
		t.Errorf("CurrentFrame = %d after mount", p.CurrentFrame())
	}
	if rec.W != 32 || rec.H != 32 {
		t.Errorf("surface size %dx%d, want 32x32", rec.W, rec.H)
	}
	if rec.Count("Clear") != 1 {
		t.Errorf("surface cleared %d times", rec.Count("Clear"))
	}
}

func TestMountCancelled(t *testing.T) {
	p, _, _, rec := newPlayer(t, Config{})
	before := p.Video()

	c, ok := testcases.Find("bitmap")
	if !ok {
		t.Fatal("sample not found")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Mount(ctx, entity.New(c.Movie, nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}

	if p.Video() != before {
		t.Error("failed mount replaced the animation")
	}
	if got := p.TotalFrames(); got != 9 {
		t.Errorf("TotalFrames = %d, want 9", got)
	}
	if rec.W != 32 || rec.H != 32 {
		t.Errorf("surface resized to %dx%d", rec.W, rec.H)
	}
	if err := p.Start(); err != nil {
		t.Errorf("previous animation no longer playable: %v", err)
	}
}

func TestPlayback(t *testing.T) {
	p, clk, ev, _ := newPlayer(t, Config{Loop: 1})

	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	if !p.Playing() {
		t.Error("not playing after start")
	}
	for _, ms := range []int{50, 120, 350, 360, 999, 1000, 1500} {
		clk.at(ms)
		p.Frame()
	}

	if want := []int{0, 1, 3, 9}; !slices.Equal(ev.frames, want) {
		t.Errorf("frames %v, want %v", ev.frames, want)
	}
	if want := []string{"start", "end"}; !slices.Equal(ev.names, want) {
		t.Errorf("events %v, want %v", ev.names, want)
	}
	if p.CurrentFrame() != 9 || p.Playing() {
		t.Errorf("after completion: frame %d, playing %t", p.CurrentFrame(), p.Playing())
	}
	if got := p.Progress(); got != 100 {
		t.Errorf("Progress = %g, want 100", got)
	}
}

func TestFillBackwards(t *testing.T) {
	p, clk, ev, _ := newPlayer(t, Config{Loop: 2, FillMode: FillBackwards})
	p.Start()
	clk.at(1500)
	p.Frame()
	clk.at(2000)
	p.Frame()

	if want := []int{0, 5, 0}; !slices.Equal(ev.frames, want) {
		t.Errorf("frames %v, want %v", ev.frames, want)
	}
	if ev.count("end") != 1 {
		t.Errorf("end fired %d times", ev.count("end"))
	}
}

func TestReversePlayback(t *testing.T) {
	for _, mode := range []PlayMode{PlayReverse, PlayFallbacks} {
		p, clk, ev, _ := newPlayer(t, Config{Loop: 1, PlayMode: mode})
		p.Start()
		clk.at(250)
		p.Frame()
		clk.at(1000)
		p.Frame()

		if want := []int{9, 7, 0}; !slices.Equal(ev.frames, want) {
			t.Errorf("%s: frames %v, want %v", mode, ev.frames, want)
		}
	}
}

func TestSubRange(t *testing.T) {
	p, clk, ev, _ := newPlayer(t, Config{Loop: 1, StartFrame: 2, EndFrame: 5})
	p.Start()
	for _, ms := range []int{100, 250, 399, 400} {
		clk.at(ms)
		p.Frame()
	}
	if want := []int{2, 3, 4, 5}; !slices.Equal(ev.frames, want) {
		t.Errorf("frames %v, want %v", ev.frames, want)
	}
	if ev.count("end") != 1 {
		t.Error("sub-range did not complete after 4 frames")
	}
}

func TestPauseResume(t *testing.T) {
	p, clk, ev, _ := newPlayer(t, Config{Loop: 1})
	p.Start()
	clk.at(350)
	p.Frame()
	p.Pause()
	if p.Playing() {
		t.Error("playing after pause")
	}

	clk.at(5000)
	if p.Frame() {
		t.Error("paused animation was advanced")
	}
	if p.CurrentFrame() != 3 {
		t.Errorf("paused at frame %d, want 3", p.CurrentFrame())
	}

	p.Resume()
	clk.at(5100)
	p.Frame()
	if want := []int{0, 3, 3, 4}; !slices.Equal(ev.frames, want) {
		t.Errorf("frames %v, want %v", ev.frames, want)
	}
	if want := []string{"start", "pause", "resume"}; !slices.Equal(ev.names, want) {
		t.Errorf("events %v, want %v", ev.names, want)
	}
}

func TestResumeAfterEnd(t *testing.T) {
	p, clk, ev, _ := newPlayer(t, Config{Loop: 1})
	p.Start()
	clk.at(1000)
	p.Frame()
	ev.frames = nil

	p.Resume()
	if want := []int{0}; !slices.Equal(ev.frames, want) {
		t.Errorf("frames %v, want %v", ev.frames, want)
	}
}

func TestStop(t *testing.T) {
	p, clk, ev, rec := newPlayer(t, Config{})
	p.Start()
	clk.at(450)
	p.Frame()
	rec.Reset()

	p.Stop()
	if p.CurrentFrame() != 0 || p.Playing() {
		t.Errorf("after stop: frame %d, playing %t", p.CurrentFrame(), p.Playing())
	}
	if rec.Count("Clear") != 1 {
		t.Error("stop did not redraw the first frame")
	}
	clk.at(900)
	p.Frame()
	if ev.count("end") != 0 || ev.count("stop") != 1 {
		t.Errorf("events %v", ev.names)
	}
}

func TestInfiniteLoop(t *testing.T) {
	p, clk, ev, _ := newPlayer(t, Config{})
	p.Start()
	for _, ms := range []int{950, 1000, 10_250} {
		clk.at(ms)
		p.Frame()
	}
	if want := []int{0, 9, 0, 2}; !slices.Equal(ev.frames, want) {
		t.Errorf("frames %v, want %v", ev.frames, want)
	}
	if !p.Playing() || ev.count("end") != 0 {
		t.Error("infinite animation ended")
	}
}

func TestLoopStartFrame(t *testing.T) {
	p, clk, ev, _ := newPlayer(t, Config{Loop: 2, LoopStartFrame: 5})
	p.Start()
	// the second pass covers frames 5 to 9 and takes 0.5s
	for _, ms := range []int{1000, 1250, 1500} {
		clk.at(ms)
		p.Frame()
	}
	if want := []int{0, 5, 7, 9}; !slices.Equal(ev.frames, want) {
		t.Errorf("frames %v, want %v", ev.frames, want)
	}
	if ev.count("end") != 1 {
		t.Error("animation did not end after the second pass")
	}
}

func TestDestroy(t *testing.T) {
	p, _, _, rec := newPlayer(t, Config{})
	p.Start()
	p.Destroy()
	if p.Video() != nil || p.TotalFrames() != 0 {
		t.Error("animation not released")
	}
	if err := p.Start(); !errors.Is(err, ErrNotMounted) {
		t.Errorf("Start after Destroy: got %v", err)
	}
	if rec.Calls[len(rec.Calls)-1] != "Clear" {
		t.Error("surface not cleared")
	}
}

func TestVisibilityGate(t *testing.T) {
	p, clk, _, rec := newPlayer(t, Config{UseVisibilityGate: true})
	p.SetVisible(false)
	rec.Reset()
	p.Start()
	clk.at(500)
	p.Frame()
	if n := rec.Count("SetGlobalAlpha"); n != 0 {
		t.Errorf("hidden player drew %d sprites", n)
	}

	p.SetVisible(true)
	clk.at(600)
	p.Frame()
	if n := rec.Count("SetGlobalAlpha"); n != 1 {
		t.Errorf("visible player drew %d sprites, want 1", n)
	}
}

func TestAuxiliaryTickSource(t *testing.T) {
	p, _, _, _ := newPlayer(t, Config{Loop: 1, UseAuxiliaryTickSource: true})
	p.Now = nil

	done := make(chan struct{})
	p.OnEnd = func() { close(done) }
	p.Start()
	if p.Frame() {
		t.Error("display link was started")
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("animation did not complete")
	}
	if p.CurrentFrame() != 9 {
		t.Errorf("final frame %d, want 9", p.CurrentFrame())
	}
}

func TestFrameTiming(t *testing.T) {
	tests := []struct {
		name  string
		total int
		fps   int
		cfg   Config
		want  timing
	}{
		{"whole", 9, 10, Config{},
			timing{first: 0, last: 9, duration: time.Second}},
		{"no fps", 19, 0, Config{},
			timing{first: 0, last: 19, duration: time.Second}},
		{"range", 9, 10, Config{StartFrame: 2, EndFrame: 5},
			timing{first: 2, last: 5, duration: 400 * time.Millisecond}},
		{"end past total", 9, 10, Config{EndFrame: 50},
			timing{first: 0, last: 9, duration: time.Second}},
		{"loop start", 9, 10, Config{LoopStartFrame: 4},
			timing{first: 0, last: 9, duration: time.Second, loopStart: 400 * time.Millisecond}},
		{"reverse loop start", 9, 10, Config{LoopStartFrame: 4, PlayMode: PlayReverse},
			timing{first: 0, last: 9, reverse: true, duration: time.Second, loopStart: 500 * time.Millisecond}},
		{"loop start outside", 9, 10, Config{StartFrame: 5, LoopStartFrame: 2},
			timing{first: 5, last: 9, duration: 500 * time.Millisecond}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := frameTiming(tc.total, tc.fps, &tc.cfg)
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestTimingFrame(t *testing.T) {
	tm := timing{first: 2, last: 5, reverse: true}
	for i, want := range map[int]int{1: 5, 2: 5, 3: 4, 5: 2, 6: 2} {
		if got := tm.frame(i); got != want {
			t.Errorf("frame(%d) = %d, want %d", i, got, want)
		}
	}
	if tm.initial() != 5 || tm.final() != 2 {
		t.Errorf("initial %d, final %d", tm.initial(), tm.final())
	}
}
