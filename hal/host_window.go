//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"image"
	"os"

	"rtk/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunWindow starts a desktop window that displays the framebuffer while the
// kernel runs on the board. It blocks until the window closes or the kernel
// halts. Space pauses frame updates; Escape quits.
func RunWindow(newApp NewApp, opts Options) error {
	h := newHostHAL(opts, os.Stdout)
	app, err := newApp(h)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- app.Run(ctx) }()

	g := &hostGame{h: h, app: app, runErr: runErr}
	ebiten.SetWindowTitle("rtk (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*2, h.fb.height*2)
	ebiten.SetTPS(60)
	err = ebiten.RunGame(g)
	cancel()
	if g.done {
		return g.err
	}
	kerr := <-runErr
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	if err == nil && !errors.Is(kerr, context.Canceled) {
		err = kerr
	}
	return err
}

type hostGame struct {
	h       *hostHAL
	app     App
	runErr  chan error
	paused  bool
	done    bool
	err     error
	frame   uint64
	scratch []byte
	img     *image.RGBA
	fbImg   *ebiten.Image
}

func (g *hostGame) Update() error {
	select {
	case err := <-g.runErr:
		g.done, g.err = true, err
		return ebiten.Termination
	default:
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if g.paused {
		return nil
	}
	return g.app.Step()
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.fbImg == nil {
		g.scratch = make([]byte, len(fb.front))
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	// Convert only when a new frame was presented.
	if n := fb.presented(g.scratch); n != g.frame {
		g.frame = n
		src, dst := g.scratch, g.img.Pix
		for i := 0; i+1 < len(src); i += 2 {
			r, gg, b := unpackRGB565(uint16(src[i]) | uint16(src[i+1])<<8)
			j := i * 2
			dst[j+0] = r
			dst[j+1] = gg
			dst[j+2] = b
			dst[j+3] = 0xFF
		}
		g.fbImg.WritePixels(dst)
	}
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
