// Command svgaview plays an SVGA animation in a window.
//
// Space pauses and resumes playback, S stops and R restarts it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"seehuhn.de/go/svga"
	"seehuhn.de/go/svga/cache"
	"seehuhn.de/go/svga/entity"
	"seehuhn.de/go/svga/parser"
	"seehuhn.de/go/svga/raster"
	"seehuhn.de/go/svga/testcases"
)

// Viewer implements ebiten.Game.  Update drives the player, so that all
// drawing happens on the game goroutine.
type Viewer struct {
	player *svga.Player
	canvas *raster.Canvas
	scale  int
}

func (v *Viewer) Update() error {
	v.player.SetVisible(ebiten.IsFocused())

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if v.player.Playing() {
			v.player.Pause()
		} else if err := v.player.Resume(); err != nil {
			return err
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		v.player.Stop()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if err := v.player.Start(); err != nil {
			return err
		}
	}

	v.player.Frame()
	return nil
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.WritePixels(v.canvas.Image().Pix)
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.canvas.Width(), v.canvas.Height()
}

func main() {
	inputPtr := flag.String("input", "", "archive file or URL")
	demoPtr := flag.String("demo", "bouncing_ball", "play a built-in sample if no -input is given")
	configPtr := flag.String("config", "", "player configuration (YAML)")
	scalePtr := flag.Int("scale", 2, "window scale factor")
	cachePtr := flag.Bool("cache", false, "keep decoded archives in the user data directory")
	flag.Parse()

	cfg := &svga.Config{}
	if *configPtr != "" {
		var err error
		cfg, err = svga.LoadConfig(*configPtr)
		if err != nil {
			log.Fatal(err)
		}
	}
	if cfg.UseAuxiliaryTickSource {
		// the timer goroutine would draw while ebiten reads the pixels
		log.Printf("[svgaview] ignoring useAuxiliaryTickSource")
		cfg.UseAuxiliaryTickSource = false
	}

	p := &parser.Parser{Decoder: parser.NewWorker(0, nil)}
	if *cachePtr {
		store, err := cache.OpenDisk("svgaview")
		if err != nil {
			log.Printf("[svgaview] cache disabled: %v", err)
		} else {
			p.Cache = store
		}
	}

	ctx := context.Background()
	v, title, err := load(ctx, p, *inputPtr, *demoPtr)
	if err != nil {
		log.Fatal(err)
	}

	c := raster.NewCanvas(1, 1)
	player, err := svga.New(c, *cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := player.Mount(ctx, v); err != nil {
		log.Fatal(err)
	}

	player.OnEnd = func() { log.Printf("[svgaview] playback finished") }
	if err := player.Start(); err != nil {
		log.Fatal(err)
	}

	viewer := &Viewer{player: player, canvas: c, scale: max(*scalePtr, 1)}
	ebiten.SetWindowSize(c.Width()*viewer.scale, c.Height()*viewer.scale)
	ebiten.SetWindowTitle(fmt.Sprintf("svgaview - %s", title))
	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}

// load returns the animation to play and a title for the window.
func load(ctx context.Context, p *parser.Parser, input, demo string) (*entity.VideoEntity, string, error) {
	if input != "" {
		v, err := p.Load(ctx, input)
		return v, input, err
	}
	tc, ok := testcases.Find(demo)
	if !ok {
		return nil, "", fmt.Errorf("unknown sample %q", demo)
	}
	data, err := tc.Archive()
	if err != nil {
		return nil, "", err
	}
	v, err := p.Parse(ctx, data)
	return v, demo, err
}
