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

// Command svgarender renders the frames of an SVGA animation to PNG files.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"seehuhn.de/go/svga"
	"seehuhn.de/go/svga/entity"
	"seehuhn.de/go/svga/parser"
	"seehuhn.de/go/svga/raster"
	"seehuhn.de/go/svga/render"
	"seehuhn.de/go/svga/testcases"
)

func main() {
	inputPtr := flag.String("input", "", "archive file or URL")
	demoPtr := flag.String("demo", "", "render a built-in sample instead of -input")
	outputPtr := flag.String("output", ".", "output directory")
	framePtr := flag.Int("frame", -1, "render only this frame")
	backgroundPtr := flag.String("background", "", "background color, e.g. #ffffff")
	configPtr := flag.String("config", "", "player configuration (YAML), used for the frame range")
	legacyPtr := flag.Bool("legacy", false, "accept SVGA 1.x archives")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "number of parallel renderers")
	statsPtr := flag.Bool("stats", false, "print timing and memory statistics")
	flag.Parse()

	cfg := &svga.Config{}
	if *configPtr != "" {
		var err error
		cfg, err = svga.LoadConfig(*configPtr)
		if err != nil {
			log.Fatal(err)
		}
	}

	var bg color.Color
	if *backgroundPtr != "" {
		c, err := colorful.Hex(*backgroundPtr)
		if err != nil {
			log.Fatalf("invalid background color %q: %v", *backgroundPtr, err)
		}
		r, g, b := c.RGB255()
		bg = color.NRGBA{R: r, G: g, B: b, A: 255}
	}

	start := time.Now()
	ctx := context.Background()
	v, err := load(ctx, *inputPtr, *demoPtr, parser.Options{AllowLegacy: *legacyPtr})
	if err != nil {
		log.Fatal(err)
	}

	first, last := 0, v.Frames-1
	if cfg.EndFrame > 0 {
		last = min(cfg.EndFrame, last)
	}
	first = min(cfg.StartFrame, last)
	if *framePtr >= 0 {
		if *framePtr >= v.Frames {
			log.Fatalf("frame %d out of range, the animation has %d frames", *framePtr, v.Frames)
		}
		first, last = *framePtr, *framePtr
	}

	if err := os.MkdirAll(*outputPtr, 0o755); err != nil {
		log.Fatal(err)
	}

	w := int(math.Ceil(v.Size.Width))
	h := int(math.Ceil(v.Size.Height))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*workersPtr, 1))
	for i := first; i <= last; i++ {
		g.Go(func() error {
			r := &render.Renderer{}
			if err := r.Mount(gctx, v); err != nil {
				return err
			}
			c := raster.NewCanvas(w, h)
			r.DrawFrame(c, i)

			name := filepath.Join(*outputPtr, fmt.Sprintf("frame_%04d.png", i))
			return writePNG(name, c.Image(), bg)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}

	n := last - first + 1
	log.Printf("[svgarender] wrote %d frames of %dx%d to %s", n, w, h, *outputPtr)
	if *statsPtr {
		printStats(n, time.Since(start))
	}
}

func load(ctx context.Context, input, demo string, opt parser.Options) (*entity.VideoEntity, error) {
	p := &parser.Parser{Options: opt}
	if demo != "" {
		c, ok := testcases.Find(demo)
		if !ok {
			return nil, fmt.Errorf("unknown sample %q", demo)
		}
		data, err := c.Archive()
		if err != nil {
			return nil, err
		}
		return p.Parse(ctx, data)
	}
	if input == "" {
		return nil, fmt.Errorf("no input given, use -input or -demo")
	}
	return p.Load(ctx, input)
}

func writePNG(name string, img *image.RGBA, bg color.Color) error {
	var out image.Image = img
	if bg != nil {
		b := img.Bounds()
		dst := image.NewRGBA(b)
		draw.Draw(dst, b, image.NewUniform(bg), image.Point{}, draw.Src)
		draw.Draw(dst, b, img, b.Min, draw.Over)
		out = dst
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, out); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	return f.Close()
}

func printStats(frames int, elapsed time.Duration) {
	perFrame := elapsed / time.Duration(max(frames, 1))
	fmt.Printf("time:    %v (%v per frame)\n", elapsed.Round(time.Millisecond), perFrame.Round(time.Microsecond))

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			fmt.Printf("rss:     %.1f MiB\n", float64(mi.RSS)/(1<<20))
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		fmt.Printf("system:  %.1f%% of %.1f GiB in use\n", vm.UsedPercent, float64(vm.Total)/(1<<30))
	}
}
