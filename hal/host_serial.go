//go:build !tinygo

package hal

import (
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

const ctrlD = 0x04

// stdioConsole is the machine console on the process stdin/stdout.
type stdioConsole struct {
	*QueueSerial

	in       *os.File
	fd       int
	oldState *term.State
	stopOnce sync.Once
}

// openStdioConsole wires stdin/stdout as the console. In terminal mode a tty
// stdin is switched to raw mode so single keys arrive without RETURN.
func openStdioConsole(in, out *os.File, mode ConsoleMode) (*stdioConsole, error) {
	c := &stdioConsole{in: in, fd: int(in.Fd())}
	var w io.Writer = out
	if mode == ConsoleTerminal && term.IsTerminal(c.fd) {
		old, err := term.MakeRaw(c.fd)
		if err != nil {
			return nil, err
		}
		c.oldState = old
		// Raw mode turns off output post-processing.
		w = crlfWriter{w: out}
	}
	c.QueueSerial = NewQueueSerial(w, 256)
	return c, nil
}

func (c *stdioConsole) raw() bool { return c.oldState != nil }

// pump copies stdin into the queue until stdin ends or Ctrl-D arrives.
func (c *stdioConsole) pump() {
	defer c.QueueSerial.Close()
	buf := make([]byte, 1)
	for {
		n, err := c.in.Read(buf)
		if n > 0 {
			b := buf[0]
			switch {
			case b == ctrlD:
				return
			case b == '\n' && !c.raw():
				b = '\r'
			}
			if !c.Push(b) {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// Stop ends the input and restores the terminal.
func (c *stdioConsole) Stop() {
	c.stopOnce.Do(func() {
		c.QueueSerial.Close()
		if c.oldState != nil {
			_ = term.Restore(c.fd, c.oldState)
		}
	})
}

type crlfWriter struct {
	w io.Writer
}

func (cw crlfWriter) Write(p []byte) (int, error) {
	out := make([]byte, 0, len(p)+8)
	for _, b := range p {
		if b == '\n' {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	if _, err := cw.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
