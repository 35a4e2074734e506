// Package bootctl owns the autoboot-suppression signature the boot stage
// reads after a warm boot, and the warm boot itself.
package bootctl

import (
	"encoding/binary"
	"io"

	"sdmenu/hal"
)

// Magic marks "skip SD boot" in the first word of the reserved region.
const Magic uint32 = 0xB007C0DE

// Controller reads and writes the signature in machine RAM.
type Controller struct {
	m hal.Machine
	w io.Writer
}

// New returns a controller for m. Warm-boot messages go to w.
func New(m hal.Machine, w io.Writer) *Controller {
	return &Controller{m: m, w: w}
}

// Reserved returns the size of the region above the initial stack.
func (c *Controller) Reserved() uint32 {
	return c.m.Layout().Reserved()
}

func (c *Controller) word() []byte {
	if c.Reserved() < 4 {
		return nil
	}
	ram := c.m.RAM()
	at := c.m.Layout().InitialStack
	if uint64(at)+4 > uint64(len(ram)) {
		return nil
	}
	return ram[at : at+4]
}

// Marked reports whether the signature is present.
func (c *Controller) Marked() bool {
	w := c.word()
	return w != nil && binary.BigEndian.Uint32(w) == Magic
}

// Suppress writes the signature. It reports false when nothing was written:
// no region is reserved, or the signature is already there.
func (c *Controller) Suppress() bool {
	w := c.word()
	if w == nil || c.Marked() {
		return false
	}
	binary.BigEndian.PutUint32(w, Magic)
	return true
}

// Consume clears the signature and reports whether it was set. The boot
// stage calls it once per start.
func (c *Controller) Consume() bool {
	if !c.Marked() {
		return false
	}
	clear(c.word())
	return true
}

// WarmBoot restarts through the boot stage. With suppress set the next start
// skips SD boot. It does not return.
func (c *Controller) WarmBoot(suppress bool) {
	if suppress {
		c.Suppress()
	}
	io.WriteString(c.w, "\nMenu exit.  -= DON'T PANIC =-")
	c.m.WarmBoot()
}
