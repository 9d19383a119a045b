package animator

import (
	"sync"
	"time"
)

// TickSource calls a function repeatedly, until stopped.
type TickSource interface {
	// Start begins calling tick.  A previous tick function is replaced.
	Start(tick func())

	// Stop ends the calls to tick.  It must not wait for a running call
	// to return.
	Stop()
}

// DisplayLink is a TickSource driven by the host, which calls Frame once
// per display refresh.
type DisplayLink struct {
	mu   sync.Mutex
	tick func()
}

func (d *DisplayLink) Start(tick func()) {
	d.mu.Lock()
	d.tick = tick
	d.mu.Unlock()
}

func (d *DisplayLink) Stop() {
	d.mu.Lock()
	d.tick = nil
	d.mu.Unlock()
}

// Frame runs one tick.  It reports whether the source was started.
func (d *DisplayLink) Frame() bool {
	d.mu.Lock()
	tick := d.tick
	d.mu.Unlock()
	if tick == nil {
		return false
	}
	tick()
	return true
}

// DefaultInterval is the tick interval of a Ticker, one display refresh at
// 60 Hz.
const DefaultInterval = time.Second / 60

// Ticker is a TickSource which calls tick at a fixed interval, from its own
// goroutine.  It keeps running when the host stops calling Frame on a
// DisplayLink, for example while a window is minimised.
type Ticker struct {
	// Interval is the time between ticks.  If zero, DefaultInterval is
	// used.
	Interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

func (t *Ticker) Start(tick func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
	}
	stop := make(chan struct{})
	t.stop = stop

	interval := t.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	go func() {
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tk.C:
				tick()
			}
		}
	}()
}

func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}
