// Package console is the operator terminal: single-key input, formatted
// output, and the shell line editor.
package console

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"sdmenu/hal"
)

// MaxLine is the longest line ReadLine accepts.
const MaxLine = 255

const (
	Bell      = 0x07
	CtrlA     = 0x01
	ctrlC     = 0x03
	ctrlX     = 0x18
	backspace = '\b'
	del       = 0x7f
)

// Console reads and writes the machine console. When the input side goes
// away for good the machine is powered off.
type Console struct {
	s   hal.Serial
	m   hal.Machine
	one [1]byte
}

func New(s hal.Serial, m hal.Machine) *Console {
	return &Console{s: s, m: m}
}

// Write sends p unchanged.
func (c *Console) Write(p []byte) (int, error) {
	return c.s.Write(p)
}

func (c *Console) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.s, format, args...)
}

func (c *Console) Print(s string) {
	_, _ = io.WriteString(c.s, s)
}

func (c *Console) SendChar(b byte) {
	c.one[0] = b
	_, _ = c.s.Write(c.one[:])
}

// Ring sounds the terminal bell.
func (c *Console) Ring() { c.SendChar(Bell) }

// ReadChar blocks for one byte of input.
func (c *Console) ReadChar() byte {
	var b [1]byte
	for {
		n, err := c.s.Read(b[:])
		if n == 1 {
			return b[0]
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.m.PowerOff()
			}
			c.m.Halt(fmt.Errorf("console: %w", err))
		}
	}
}

// ReadLine edits one line of input. BS and DEL erase, Ctrl-C and Ctrl-X
// clear the line, RETURN accepts. Control characters are ignored.
func (c *Console) ReadLine() string {
	var line []byte
	for {
		ch := c.ReadChar()
		switch ch {
		case '\r':
			c.Print("\n")
			return string(line)
		case backspace, del:
			if len(line) > 0 {
				line = line[:len(line)-1]
				c.Print("\b \b")
			}
		case ctrlC, ctrlX:
			c.Print(strings.Repeat("\b \b", len(line)))
			line = line[:0]
		default:
			if len(line) < MaxLine && ch >= ' ' {
				c.SendChar(ch)
				line = append(line, ch)
			}
		}
	}
}
