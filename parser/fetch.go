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
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

var (
	// ErrNoURL is returned when an archive is requested without a source.
	ErrNoURL = errors.New("download link undefined")

	// ErrStatus is returned for HTTP responses other than 200 and 304.
	ErrStatus = errors.New("unexpected HTTP status")

	// ErrNoData is returned for requests without archive data.
	ErrNoData = errors.New("parser data not found")
)

// Fetcher loads the bytes of an archive.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// DefaultTimeout limits the duration of requests made by an HTTPFetcher
// without a Timeout.
const DefaultTimeout = time.Minute

var defaultClient = &fasthttp.Client{
	Name:         "svga",
	ReadTimeout:  DefaultTimeout,
	WriteTimeout: DefaultTimeout,
}

// HTTPFetcher loads archives over HTTP.  URLs without an http or https
// scheme are read from the local file system.
type HTTPFetcher struct {
	// Client is used for HTTP requests.  If nil, a shared default client
	// is used.
	Client *fasthttp.Client

	// Timeout limits the duration of a single request.  If zero,
	// DefaultTimeout is used.  An earlier context deadline takes
	// precedence.
	Timeout time.Duration
}

// DefaultFetcher is used by decoders without a Fetcher.
var DefaultFetcher Fetcher = &HTTPFetcher{}

type fetchResult struct {
	body []byte
	err  error
}

// Fetch downloads url.  Only the status codes 200 and 304 are accepted.
// If ctx is cancelled before the response arrives, the request is
// abandoned and the context error is returned.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, ErrNoURL
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := f.Client
	if client == nil {
		client = defaultClient
	}

	// The request and response are owned by the goroutine, which may
	// outlive an abandoned call by at most the request timeout.
	timeout := f.timeout(ctx)
	ch := make(chan fetchResult, 1)
	go func() {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(url)
		req.Header.SetMethod(fasthttp.MethodGet)

		if err := client.DoTimeout(req, resp, timeout); err != nil {
			ch <- fetchResult{err: fmt.Errorf("GET %s: %w", url, err)}
			return
		}

		switch code := resp.StatusCode(); code {
		case fasthttp.StatusOK, fasthttp.StatusNotModified:
			ch <- fetchResult{body: bytes.Clone(resp.Body())}
		default:
			ch <- fetchResult{err: fmt.Errorf("GET %s: %w %d", url, ErrStatus, code)}
		}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.body, r.err
	}
}

// timeout returns the time limit for a request made under ctx.
func (f *HTTPFetcher) timeout(ctx context.Context) time.Duration {
	d := f.Timeout
	if d <= 0 {
		d = DefaultTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		d = min(d, max(time.Until(deadline), time.Millisecond))
	}
	return d
}
