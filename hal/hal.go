package hal

import (
	"errors"

	"sdmenu/storage"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
	KeyDelete
)

// KeyEvent is a keyboard event.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
}

// Serial is the character console: one byte in, bytes out.
//
// Read blocks until at least one byte is available. io.EOF means the
// console is gone for good (host stdin closed).
type Serial interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Time provides a base tick stream.
//
// Tick sequence numbers increase by one per tick at Hz ticks per second.
type Time interface {
	Ticks() <-chan uint64
	Hz() int
}

// Layout is the machine memory map seen by the menu.
//
// Programs load at LoadAddress and may grow up to InitialStack. The region
// [InitialStack, MemTop) is reserved for the boot stage.
type Layout struct {
	LoadAddress  uint32
	InitialStack uint32
	MemTop       uint32
}

// Reserved returns the size of the boot-stage region above the initial stack.
func (l Layout) Reserved() uint32 {
	if l.MemTop <= l.InitialStack {
		return 0
	}
	return l.MemTop - l.InitialStack
}

// Machine is the processor side of the HAL.
//
// WarmBoot, Jump, PowerOff and Halt never return to the caller.
type Machine interface {
	RAM() []byte
	Layout() Layout
	FirmwareRev() uint32

	// WarmBoot re-enters the boot stage through the reset path. RAM survives.
	WarmBoot()
	// Jump transfers control to a loaded image at addr.
	Jump(addr uint32)
	// PowerOff ends execution cleanly.
	PowerOff()
	// Halt stops the machine after an unrecoverable fault.
	Halt(reason error)
}

// HAL provides the only contact point between the OS and the outside world.
type HAL interface {
	Logger() Logger
	LED() LED
	Display() Display
	Input() Input
	Serial() Serial
	Time() Time
	Machine() Machine
	Volume() storage.Volume
}
