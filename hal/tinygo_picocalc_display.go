//go:build tinygo && baremetal && picocalc

package hal

import (
	"errors"
	"hash/crc32"
	"machine"
	"time"
)

// lcdPanel drives the PicoCalc ILI9488 over SPI1. Console output changes a
// few text rows at a time, so only rows whose contents changed since the
// last frame are sent.
type lcdPanel struct {
	spi machine.SPI
	cs  machine.Pin
	dc  machine.Pin
	rst machine.Pin

	tx      []byte
	rowSums []uint32
}

var errFrame = errors.New("lcd: frame does not match panel")

func openLCDPanel(rows int) (*lcdPanel, error) {
	if machine.SPI1 == nil {
		return nil, errors.New("lcd: SPI1 unavailable")
	}
	machine.SPI1.Configure(machine.SPIConfig{
		SCK:       machine.GP10,
		SDO:       machine.GP11,
		SDI:       machine.GP12,
		Frequency: 40_000_000,
	})

	p := &lcdPanel{
		spi:     *machine.SPI1,
		cs:      machine.GP13,
		dc:      machine.GP14,
		rst:     machine.GP15,
		tx:      make([]byte, 2048),
		rowSums: make([]uint32, rows),
	}
	for _, pin := range []machine.Pin{p.cs, p.dc, p.rst} {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.High()
	}

	p.rst.Low()
	time.Sleep(64 * time.Millisecond)
	p.rst.High()
	time.Sleep(140 * time.Millisecond)

	p.command(0xC0, 0x17, 0x15)             // power control 1
	p.command(0xC1, 0x41)                   // power control 2
	p.command(0xC5, 0x00, 0x12, 0x80, 0x40) // VCOM
	p.command(0x3A, 0x55)                   // 16 bpp
	p.command(0xB1, 0xA0, 0x11)             // frame rate
	p.command(0xB6, 0x02, 0x22, 0x27)       // 320 lines
	p.command(0x21)                         // inversion on
	p.command(0x36, 0x40|0x04|0x08)         // MX|MH|BGR for the PicoCalc wiring
	p.command(0x11)                         // sleep out
	time.Sleep(120 * time.Millisecond)
	p.command(0x29) // display on

	// Force the first frame out in full.
	for i := range p.rowSums {
		p.rowSums[i] = ^uint32(0)
	}
	return p, nil
}

func (p *lcdPanel) command(cmd byte, data ...byte) {
	p.cs.Low()
	p.dc.Low()
	p.spi.Tx([]byte{cmd}, nil)
	p.dc.High()
	if len(data) > 0 {
		p.spi.Tx(data, nil)
	}
	p.cs.High()
}

func (p *lcdPanel) window(x0, y0, x1, y1 uint16) {
	p.command(0x2A, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1))
	p.command(0x2B, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1))
	p.command(0x2C)
}

// present sends the rows of buf (little-endian RGB565) that changed.
func (p *lcdPanel) present(buf []byte, w, h int) error {
	stride := w * 2
	if w <= 0 || h != len(p.rowSums) || len(buf) < h*stride {
		return errFrame
	}
	start := -1
	for y := 0; y <= h; y++ {
		if y < h {
			sum := crc32.ChecksumIEEE(buf[y*stride : (y+1)*stride])
			if sum != p.rowSums[y] {
				p.rowSums[y] = sum
				if start < 0 {
					start = y
				}
				continue
			}
		}
		if start >= 0 {
			p.sendRows(buf[start*stride:y*stride], w, start, y-1)
			start = -1
		}
	}
	return nil
}

func (p *lcdPanel) sendRows(src []byte, w, y0, y1 int) {
	p.window(0, uint16(y0), uint16(w-1), uint16(y1))
	p.cs.Low()
	p.dc.High()
	for len(src) > 0 {
		n := min(len(p.tx), len(src)) &^ 1
		// The panel wants big-endian pixels.
		for i := 0; i < n; i += 2 {
			p.tx[i], p.tx[i+1] = src[i+1], src[i]
		}
		p.spi.Tx(p.tx[:n], nil)
		src = src[n:]
	}
	p.cs.High()
}
