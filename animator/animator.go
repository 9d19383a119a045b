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

// Package animator maps wall clock time to animation frame indices.
//
// An [Animator] interpolates linearly between a start and an end value over
// a fixed duration, optionally repeating.  It is driven by a [TickSource],
// which calls it once per display refresh or timer tick.  The update
// callback receives the integer part of the current value and is only
// called when this changes.
package animator

import (
	"math"
	"sync"
	"time"
)

// Animator is the timing engine of a player.
//
// The exported fields must be set before Start is called and not changed
// while the animation runs.  The callbacks are called without any locks
// held, so they may call the methods of the Animator.
type Animator struct {
	StartValue float64
	EndValue   float64

	// Duration is the length of one pass from StartValue to EndValue.
	Duration time.Duration

	// Loops is the number of passes.  Values smaller than 1 mean that the
	// animation repeats forever.
	Loops int

	// LoopStart is the offset into the pass at which the second and later
	// passes begin.
	LoopStart time.Duration

	// FillBackwards makes a completed animation rest at StartValue, instead
	// of EndValue.
	FillBackwards bool

	OnStart  func()
	OnUpdate func(index int)
	OnEnd    func()

	// Now returns the current time.  If nil, time.Now is used.
	Now func() time.Time

	// Source drives the animation.
	Source TickSource

	mu        sync.Mutex
	running   bool
	gen       int // incremented on every start and stop
	epoch     time.Time
	fraction  float64
	lastIndex int
	hasIndex  bool
}

// Start starts the animation at StartValue.  If the animation is already
// running, it is restarted.
func (a *Animator) Start() {
	a.StartAt(a.StartValue)
}

// StartAt starts the animation as if it had been running long enough to
// reach value.  The first update happens before StartAt returns.
func (a *Animator) StartAt(value float64) {
	a.mu.Lock()
	if a.running && a.Source != nil {
		a.Source.Stop()
	}
	a.running = true
	a.gen++
	gen := a.gen
	a.epoch = a.now()
	if span := a.EndValue - a.StartValue; span != 0 && value != a.StartValue {
		// Round towards the later time when counting up and towards the
		// earlier time when counting down, so that the first update
		// reports floor(value) and not the index before it.
		offset := (value - a.StartValue) / span * float64(a.Duration)
		if span > 0 {
			offset = math.Ceil(offset)
		} else {
			offset = math.Floor(offset)
		}
		a.epoch = a.epoch.Add(-time.Duration(offset))
	}
	a.fraction = 0
	a.hasIndex = false
	onStart := a.OnStart
	a.mu.Unlock()

	if onStart != nil {
		onStart()
	}
	a.tick(gen)

	a.mu.Lock()
	if a.running && a.gen == gen && a.Source != nil {
		a.Source.Start(func() { a.tick(gen) })
	}
	a.mu.Unlock()
}

// Stop halts the animation.  The end callback is not called.
// Calling Stop on a stopped animation has no effect.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return
	}
	a.running = false
	a.gen++
	if a.Source != nil {
		a.Source.Stop()
	}
}

// Running reports whether the animation is running.
func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Fraction returns the position within the current pass, in the range 0
// to 1.
func (a *Animator) Fraction() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fraction
}

// Value returns the current animated value.
func (a *Animator) Value() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value()
}

func (a *Animator) value() float64 {
	return a.StartValue + a.fraction*(a.EndValue-a.StartValue)
}

func (a *Animator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// tick advances the animation to the current time.  Ticks from an earlier
// run are ignored.
func (a *Animator) tick(gen int) {
	a.mu.Lock()
	if !a.running || a.gen != gen {
		a.mu.Unlock()
		return
	}

	elapsed := max(a.now().Sub(a.epoch), 0)
	done := a.Loops >= 1 && elapsed >= a.total()
	if done {
		if a.FillBackwards {
			a.fraction = 0
		} else {
			a.fraction = 1
		}
		a.running = false
		a.gen++
		if a.Source != nil {
			a.Source.Stop()
		}
	} else {
		a.fraction = a.fractionAt(elapsed)
	}

	index := int(math.Floor(a.value()))
	changed := !a.hasIndex || index != a.lastIndex
	a.lastIndex, a.hasIndex = index, true
	onUpdate, onEnd := a.OnUpdate, a.OnEnd
	a.mu.Unlock()

	if changed && onUpdate != nil {
		onUpdate(index)
	}
	if done && onEnd != nil {
		onEnd()
	}
}

// loopStart returns LoopStart limited to [0, Duration).
func (a *Animator) loopStart() time.Duration {
	return min(max(a.LoopStart, 0), max(a.Duration-1, 0))
}

// total returns the time until the animation completes.
func (a *Animator) total() time.Duration {
	d := a.Duration
	return d + (d-a.loopStart())*time.Duration(a.Loops-1)
}

// fractionAt returns the position within the pass at the given time since
// the start.  The first pass covers the whole duration, later passes start
// at LoopStart.
func (a *Animator) fractionAt(elapsed time.Duration) float64 {
	d := a.Duration
	if d <= 0 {
		return 0
	}
	ls := a.loopStart()
	if ls == 0 {
		return float64(elapsed%d) / float64(d)
	}
	if elapsed < d {
		return float64(elapsed) / float64(d)
	}
	return float64((elapsed-d)%(d-ls)+ls) / float64(d)
}
