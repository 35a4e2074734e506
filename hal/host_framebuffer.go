//go:build !tinygo

package hal

import (
	"image/color"
	"sync"
)

// hostFramebuffer backs the window console. Present marks the picture dirty
// so the window converts it only after the firmware drew something.
type hostFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte
	dirty  bool
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	stride := width * 2
	return &hostFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
		dirty:  true,
	}
}

func (f *hostFramebuffer) Width() int          { return f.width }
func (f *hostFramebuffer) Height() int         { return f.height }
func (f *hostFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *hostFramebuffer) StrideBytes() int    { return f.stride }
func (f *hostFramebuffer) Buffer() []byte      { return f.buf }

func (f *hostFramebuffer) Present() error {
	f.markDirty()
	return nil
}

func (f *hostFramebuffer) markDirty() {
	f.mu.Lock()
	f.dirty = true
	f.mu.Unlock()
}

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fillRGB565(f.buf, color.RGBA{R: r, G: g, B: b, A: 0xFF})
	f.dirty = true
}

// snapshotRGB565 copies the picture into dst if it changed since the last
// snapshot and reports whether it did.
func (f *hostFramebuffer) snapshotRGB565(dst []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.dirty {
		return false
	}
	copy(dst, f.buf)
	f.dirty = false
	return true
}
