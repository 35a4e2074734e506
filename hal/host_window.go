//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"sdmenu/internal/buildinfo"
)

// runWindow shows the console in a desktop window. ebiten owns the calling
// goroutine; the firmware runs on its own.
func runWindow(ctx context.Context, cfg HostConfig, boot func(HAL)) (HostResult, error) {
	h, err := newHost(cfg, nil)
	if err != nil {
		return HostResult{}, err
	}
	h.fb = newHostFramebuffer(320, 320)
	q := NewQueueSerial(NewFramebufferConsole(h.fb), 256)
	h.serial = q
	go FeedKeys(h.kbd.Events(), q)

	var (
		res    HostResult
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		res, runErr = runMachine(ctx, h, boot, q.Close)
	}()

	g := &hostGame{h: h, done: done}
	ebiten.SetWindowTitle("sdmenu (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*2, h.fb.height*2)
	ebiten.SetTPS(60)
	err = ebiten.RunGame(g)

	// Closing the window is pulling the plug.
	q.Close()
	<-done
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return res, err
	}
	return res, runErr
}

type hostGame struct {
	h       *hostHAL
	done    <-chan struct{}
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
}

func (g *hostGame) Update() error {
	select {
	case <-g.done:
		return ebiten.Termination
	default:
	}
	g.h.kbd.poll()
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.width || g.img.Bounds().Dy() != fb.height {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
		fb.markDirty()
	}

	if fb.snapshotRGB565(g.scratch) {
		src := g.scratch
		dst := g.img.Pix
		for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
			c := rgb565{src[i], src[i+1]}.RGBA()
			j := (i / 2) * 4
			dst[j+0], dst[j+1], dst[j+2], dst[j+3] = c.R, c.G, c.B, c.A
		}
		g.fbImg.WritePixels(g.img.Pix)
	}
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
