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
	"errors"
	"runtime"
	"sync"
)

// ErrClosed is reported for requests submitted to a closed Worker.
var ErrClosed = errors.New("decode worker closed")

// Decoder decodes archives.  Failures are reported in the Err field of the
// response, never as a Go error or a panic.
type Decoder interface {
	Submit(ctx context.Context, req Request) Response
}

// process fetches the archive if needed and decodes it.
func process(ctx context.Context, f Fetcher, req Request) Response {
	resp := Response{ID: req.ID}

	data := req.Data
	if len(data) == 0 && req.URL != "" {
		if f == nil {
			f = DefaultFetcher
		}
		var err error
		data, err = f.Fetch(ctx, req.URL)
		if err != nil {
			resp.Err = &Error{URL: req.URL, Err: err}
			return resp
		}
	}

	v, err := Decode(ctx, data, req.Options)
	if err != nil {
		resp.Err = &Error{URL: req.URL, Err: err}
		return resp
	}
	resp.Video = v
	return resp
}

// Inline is a Decoder which runs on the goroutine of the caller.
type Inline struct {
	// Fetcher loads archives for requests without data.  If nil,
	// DefaultFetcher is used.
	Fetcher Fetcher
}

func (d *Inline) Submit(ctx context.Context, req Request) Response {
	return process(ctx, d.Fetcher, req)
}

type job struct {
	ctx   context.Context
	req   Request
	reply chan<- Response
}

// Worker is a Decoder backed by a pool of goroutines.
type Worker struct {
	fetcher Fetcher
	jobs    chan job
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewWorker starts a pool of n decode goroutines.  If n is not positive,
// one goroutine per CPU is started.  If f is nil, DefaultFetcher is used.
func NewWorker(n int, f Fetcher) *Worker {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	w := &Worker{
		fetcher: f,
		jobs:    make(chan job),
		done:    make(chan struct{}),
	}
	w.wg.Add(n)
	for range n {
		go w.run()
	}
	return w
}

func (w *Worker) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case j := <-w.jobs:
			// reply has a buffer of one, so this never blocks
			j.reply <- process(j.ctx, w.fetcher, j.req)
		}
	}
}

// Submit passes req to the pool and waits for the response.  If ctx is
// cancelled first, the response carries the context error.
func (w *Worker) Submit(ctx context.Context, req Request) Response {
	fail := func(err error) Response {
		return Response{ID: req.ID, Err: &Error{URL: req.URL, Err: err}}
	}

	reply := make(chan Response, 1)
	select {
	case w.jobs <- job{ctx: ctx, req: req, reply: reply}:
	case <-w.done:
		return fail(ErrClosed)
	case <-ctx.Done():
		return fail(ctx.Err())
	}

	select {
	case resp := <-reply:
		return resp
	case <-ctx.Done():
		return fail(ctx.Err())
	}
}

// Close stops the pool after the requests in progress have been
// decoded.  Later requests fail with ErrClosed.
func (w *Worker) Close() {
	w.once.Do(func() { close(w.done) })
	w.wg.Wait()
}
