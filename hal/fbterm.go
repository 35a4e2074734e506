package hal

import (
	"image/color"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// FramebufferConsole renders console output on a framebuffer with tinyterm.
type FramebufferConsole struct {
	mu  sync.Mutex
	fb  Framebuffer
	t   *tinyterm.Terminal
	buf []byte
}

// NewFramebufferConsole clears fb and returns a terminal writer for it.
func NewFramebufferConsole(fb Framebuffer) *FramebufferConsole {
	c := &FramebufferConsole{fb: fb}
	c.t = tinyterm.NewTerminal(&fbDisplay{fb: fb})
	c.t.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: true,
	})
	fb.ClearRGB(0, 0, 0)
	_ = fb.Present()
	return c
}

// Write draws p. The terminal ignores carriage return and draws backspace as
// a glyph, so both become cursor controls first.
func (c *FramebufferConsole) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf = c.buf[:0]
	for _, b := range p {
		switch b {
		case '\r':
			c.buf = append(c.buf, 0x1b, '[', 'G')
		case '\b':
			c.buf = append(c.buf, 0x1b, '[', 'D')
		case 0x07:
		default:
			c.buf = append(c.buf, b)
		}
	}
	_, _ = c.t.Write(c.buf)
	c.t.Display()
	return len(p), nil
}

type fbDisplay struct {
	fb Framebuffer
}

func (d *fbDisplay) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb.Format() != PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	ix, iy := int(x), int(y)
	if buf == nil || ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	off := iy*d.fb.StrideBytes() + ix*2
	if off+1 >= len(buf) {
		return
	}
	px := toRGB565(c)
	buf[off], buf[off+1] = px[0], px[1]
}

func (d *fbDisplay) Display() error { return d.fb.Present() }

// ScrollUp moves the picture up by lines rows and clears the exposed band.
func (d *fbDisplay) ScrollUp(lines int16, bg color.RGBA) error {
	buf := d.fb.Buffer()
	w, h := d.fb.Width(), d.fb.Height()
	n := int(lines)
	if buf == nil || n <= 0 {
		return nil
	}
	if n >= h {
		return d.FillRectangle(0, 0, int16(w), int16(h), bg)
	}
	stride := d.fb.StrideBytes()
	end := h * stride
	if end > len(buf) {
		end = len(buf)
	}
	copy(buf, buf[n*stride:end])
	return d.FillRectangle(0, int16(h-n), int16(w), int16(n), bg)
}

func (d *fbDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if d.fb.Format() != PixelFormatRGB565 {
		return nil
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return nil
	}
	w, h := d.fb.Width(), d.fb.Height()
	x0, y0 := clamp(int(x), 0, w), clamp(int(y), 0, h)
	x1, y1 := clamp(int(x)+int(width), 0, w), clamp(int(y)+int(height), 0, h)

	rgb := toRGB565(c)
	stride := d.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			off := py*stride + px*2
			if off+1 >= len(buf) {
				continue
			}
			buf[off], buf[off+1] = rgb[0], rgb[1]
		}
	}
	return nil
}

func (d *fbDisplay) SetScroll(int16) {}

func (d *fbDisplay) SetRotation(drivers.Rotation) error { return nil }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rgb565 is one framebuffer pixel, low byte first.
type rgb565 [2]byte

func toRGB565(c color.RGBA) rgb565 {
	v := uint16(c.R&0xF8)<<8 | uint16(c.G&0xFC)<<3 | uint16(c.B>>3)
	return rgb565{byte(v), byte(v >> 8)}
}

// RGBA widens the pixel by bit replication, so white stays 0xFF.
func (p rgb565) RGBA() color.RGBA {
	v := uint16(p[0]) | uint16(p[1])<<8
	r := uint8(v>>11) & 0x1F
	g := uint8(v>>5) & 0x3F
	b := uint8(v) & 0x1F
	return color.RGBA{R: r<<3 | r>>2, G: g<<2 | g>>4, B: b<<3 | b>>2, A: 0xFF}
}

// fillRGB565 paints every whole pixel in buf.
func fillRGB565(buf []byte, c color.RGBA) {
	px := toRGB565(c)
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i], buf[i+1] = px[0], px[1]
	}
}
