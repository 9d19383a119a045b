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

// Package svga plays SVGA animations.
//
// A [Player] draws a decoded animation onto a [canvas.Canvas].  The
// animation is decoded by the parser package, mounted with
// [Player.Mount] and then controlled with Start, Pause, Resume and Stop.
// By default the host drives playback by calling [Player.Frame] once per
// display refresh.
package svga

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"seehuhn.de/go/svga/animator"
	"seehuhn.de/go/svga/canvas"
	"seehuhn.de/go/svga/entity"
	"seehuhn.de/go/svga/render"
)

var (
	// ErrCanvas is returned by [New] if no drawing surface is given.
	ErrCanvas = errors.New("canvas undefined")

	// ErrNotMounted is returned when playback is requested before an
	// animation was mounted.
	ErrNotMounted = errors.New("video item undefined")
)

// defaultFPS is used for animations which do not specify a frame rate.
const defaultFPS = 20

// Player coordinates the renderer and the timing engine.
//
// The control methods Mount, Start, Resume, Pause, Stop, Clear and Destroy
// must be called from one goroutine.  The remaining methods may be called
// concurrently.  The event callbacks must be set before playback starts.
// They are called without any locks held, possibly from the goroutine of
// the auxiliary tick source.
type Player struct {
	OnStart   func()
	OnResume  func()
	OnPause   func()
	OnStop    func()
	OnProcess func()
	OnEnd     func()

	// Now returns the current time.  If nil, time.Now is used.
	Now func() time.Time

	Logger *log.Logger

	mu       sync.Mutex
	canvas   canvas.Canvas
	cfg      Config
	renderer *render.Renderer
	link     *animator.DisplayLink
	ticker   *animator.Ticker
	anim     *animator.Animator
	gen      int // identifies the current animator
	video    *entity.VideoEntity
	current  int
	total    int
	shown    bool // current was drawn by the current animator
}

// New returns a player which draws onto c.
func New(c canvas.Canvas, cfg Config) (*Player, error) {
	if c == nil {
		return nil, ErrCanvas
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Player{
		canvas:   c,
		cfg:      cfg,
		renderer: &render.Renderer{},
		link:     &animator.DisplayLink{},
		ticker:   &animator.Ticker{},
	}
	p.applyConfig()
	return p, nil
}

// SetConfig replaces the playback options.  The new options take effect
// the next time playback is started or resumed.
func (p *Player) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
	p.applyConfig()
	return nil
}

// Config returns the playback options.
func (p *Player) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

func (p *Player) applyConfig() {
	p.renderer.CacheFrames = p.cfg.CacheFrames
	p.renderer.UseVisibilityGate = p.cfg.UseVisibilityGate
}

// Mount installs v as the animation to play.  Playback is stopped, the
// surface is resized to the view box of v if it supports this, and all
// image assets are decoded before Mount returns.  If ctx is cancelled
// first, Mount returns its error and the previous animation stays mounted.
func (p *Player) Mount(ctx context.Context, v *entity.VideoEntity) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopAnimation()

	p.renderer.Logger = p.Logger
	if err := p.renderer.Mount(ctx, v); err != nil {
		return err
	}
	p.video = v
	p.current = 0
	p.total = v.Frames - 1

	if rs, ok := p.canvas.(canvas.Resizer); ok {
		rs.Resize(int(math.Ceil(v.Size.Width)), int(math.Ceil(v.Size.Height)))
	}
	p.canvas.Clear()
	return nil
}

// Start clears the surface and plays the animation from the beginning of
// the playback range.
func (p *Player) Start() error {
	return p.startAnimation(true, p.OnStart)
}

// Resume continues playback from the current frame.  If the previous run
// had reached the end of the playback range, the animation starts over.
func (p *Player) Resume() error {
	return p.startAnimation(false, p.OnResume)
}

// Pause halts playback at the current frame.
func (p *Player) Pause() {
	p.mu.Lock()
	p.stopAnimation()
	p.mu.Unlock()
	call(p.OnPause)
}

// Stop halts playback and shows the first frame.
func (p *Player) Stop() {
	p.mu.Lock()
	p.stopAnimation()
	p.current = 0
	if p.video != nil {
		p.renderer.DrawFrame(p.canvas, 0)
	}
	p.mu.Unlock()
	call(p.OnStop)
}

// Clear halts playback and clears the surface.
func (p *Player) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopAnimation()
	p.canvas.Clear()
}

// Destroy halts playback, clears the surface and releases the mounted
// animation.  The player can be used again after a new call to Mount.
func (p *Player) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopAnimation()
	p.canvas.Clear()
	p.renderer.Unmount()
	p.video = nil
	p.current = 0
	p.total = 0
}

// Frame advances the animation to the current time.  Hosts call this once
// per display refresh.  It reports whether an animation was running.
// When the auxiliary tick source is used, Frame does nothing.
func (p *Player) Frame() bool {
	return p.link.Frame()
}

// SetVisible records whether the surface is currently visible.
// Drawing is suppressed while it is not and the visibility gate is
// enabled.
func (p *Player) SetVisible(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renderer.SetVisible(visible)
}

// Video returns the mounted animation, or nil.
func (p *Player) Video() *entity.VideoEntity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.video
}

// CurrentFrame returns the index of the frame shown last.
func (p *Player) CurrentFrame() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// TotalFrames returns the index of the last frame of the mounted
// animation.
func (p *Player) TotalFrames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Progress returns the position of the current frame in percent.
func (p *Player) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.video == nil || p.video.Frames <= 0 {
		return 0
	}
	return float64(p.current+1) / float64(p.video.Frames) * 100
}

// Playing reports whether the animation is running.
func (p *Player) Playing() bool {
	p.mu.Lock()
	a := p.anim
	p.mu.Unlock()
	return a != nil && a.Running()
}

// startAnimation sets up a new animator for the current configuration.
// The animator runs its first tick synchronously, and the update callback
// takes p.mu, so the lock is released before the animator is started.
func (p *Player) startAnimation(fromStart bool, event func()) error {
	p.mu.Lock()
	if p.video == nil {
		p.mu.Unlock()
		return ErrNotMounted
	}
	p.stopAnimation()

	tm := frameTiming(p.total, p.video.FPS, &p.cfg)
	at := p.current
	if fromStart || at < tm.first || at > tm.last || at == tm.final() {
		at = tm.initial()
	}
	if fromStart {
		p.canvas.Clear()
	}

	var source animator.TickSource = p.link
	if p.cfg.UseAuxiliaryTickSource {
		source = p.ticker
	}
	gen := p.gen
	p.shown = false
	a := &animator.Animator{
		StartValue:    float64(tm.first),
		EndValue:      float64(tm.last + 1),
		Duration:      tm.duration,
		Loops:         max(p.cfg.Loop, 0),
		LoopStart:     tm.loopStart,
		FillBackwards: p.cfg.FillMode == FillBackwards,
		OnStart:       event,
		OnUpdate:      func(index int) { p.update(gen, tm.frame(index)) },
		OnEnd:         func() { p.end(gen) },
		Now:           p.Now,
		Source:        source,
	}
	p.anim = a
	p.mu.Unlock()

	a.StartAt(float64(tm.frame(at)))
	return nil
}

// stopAnimation must be called with p.mu held.
func (p *Player) stopAnimation() {
	p.gen++
	if p.anim != nil {
		p.anim.Stop()
		p.anim = nil
	}
}

func (p *Player) update(gen, index int) {
	p.mu.Lock()
	if gen != p.gen || p.video == nil {
		p.mu.Unlock()
		return
	}
	if p.shown && index == p.current {
		p.mu.Unlock()
		return
	}
	p.current, p.shown = index, true
	p.renderer.DrawFrame(p.canvas, index)
	p.mu.Unlock()
	call(p.OnProcess)
}

func (p *Player) end(gen int) {
	p.mu.Lock()
	current := gen == p.gen
	p.mu.Unlock()
	if current {
		call(p.OnEnd)
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// timing describes the playback range of the animation.
//
// The animator always counts up from first to last+1, so that every frame
// is shown for the same time.  In reverse mode its values are mirrored
// onto the range.
type timing struct {
	first, last int
	reverse     bool
	duration    time.Duration
	loopStart   time.Duration
}

// frameTiming computes the playback range for an animation whose last
// frame has index total.
func frameTiming(total, fps int, cfg *Config) timing {
	if fps <= 0 {
		fps = defaultFPS
	}
	frame := time.Second / time.Duration(fps)

	last := total
	if cfg.EndFrame > 0 {
		last = min(cfg.EndFrame, total)
	}
	first := max(min(cfg.StartFrame, last), 0)
	tm := timing{
		first:    first,
		last:     last,
		reverse:  cfg.reverse(),
		duration: time.Duration(last-first+1) * frame,
	}
	if ls := cfg.LoopStartFrame; ls > 0 && ls >= first && ls <= last {
		tm.loopStart = time.Duration(tm.frame(ls)-first) * frame
	}
	return tm
}

// frame maps an animator index to a frame index.  The mapping is its own
// inverse.
func (tm timing) frame(index int) int {
	index = min(max(index, tm.first), tm.last)
	if tm.reverse {
		return tm.first + tm.last - index
	}
	return index
}

// initial returns the frame shown first.
func (tm timing) initial() int {
	return tm.frame(tm.first)
}

// final returns the frame shown last in a pass.
func (tm timing) final() int {
	return tm.frame(tm.last)
}
