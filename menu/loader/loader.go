// Package loader copies a program image into the load window and hands the
// machine over to it.
package loader

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"sdmenu/hal"
	"sdmenu/menu/bootctl"
	"sdmenu/menu/fileop"
	"sdmenu/menu/nav"
)

// UnitSize is the copy granularity. A progress dot is printed every
// DotUnits units.
const (
	UnitSize = 512
	DotUnits = 8
)

// Clock is the tick counter used to time loads.
type Clock interface {
	Now() uint64
	WaitEdge() uint64
	Hz() int
}

// ImageTooLargeError reports an image that does not fit the load window.
type ImageTooLargeError struct {
	Offset uint32
}

func (e *ImageTooLargeError) Error() string {
	return fmt.Sprintf("image too large at offset %d (0x%08x)", e.Offset, e.Offset)
}

// Session is the state of one load.
type Session struct {
	Path    string
	Base    uint32
	Limit   uint32
	Copied  uint32
	Elapsed time.Duration
	CRC     uint32
	HasCRC  bool
}

// Loader loads images named relative to a navigation session.
type Loader struct {
	sess  *nav.Session
	m     hal.Machine
	w     io.Writer
	clock Clock
	boot  *bootctl.Controller

	led hal.LED
	crc bool
	log *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithCRC enables the CRC-32 of loaded images.
func WithCRC(on bool) Option { return func(l *Loader) { l.crc = on } }

// WithLED blinks led while copying.
func WithLED(led hal.LED) Option { return func(l *Loader) { l.led = led } }

// WithLogger sets the diagnostics logger.
func WithLogger(log *zap.Logger) Option { return func(l *Loader) { l.log = log } }

func New(sess *nav.Session, m hal.Machine, w io.Writer, clock Clock, boot *bootctl.Controller, opts ...Option) *Loader {
	l := &Loader{sess: sess, m: m, w: w, clock: clock, boot: boot, log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAndRun copies name to the load address and jumps to it. With suppress
// set the autoboot signature is written first. It only returns on failure,
// after reporting it on the console.
func (l *Loader) LoadAndRun(name string, suppress bool) error {
	layout := l.m.Layout()
	s := &Session{Path: l.sess.Resolve(name), Base: layout.LoadAddress, Limit: layout.InitialStack}
	fmt.Fprintf(l.w, "Loading \"%s\"", s.Path)

	start := l.clock.WaitEdge()
	f, err := fileop.Open(l.sess.Volume(), s.Path)
	if err != nil {
		io.WriteString(l.w, "...open failed!\n\n")
		l.log.Warn("load: open failed", zap.String("path", s.Path), zap.Error(err))
		return err
	}
	err = l.copy(f, s)
	_ = f.Close()
	s.Elapsed = time.Duration(l.clock.Now()-start) * time.Second / time.Duration(l.hz())

	if err != nil {
		what := "Read"
		var tooLarge *ImageTooLargeError
		if errors.As(err, &tooLarge) {
			what = "Too large"
		}
		fmt.Fprintf(l.w, "\n*** %s error at offset %d (0x%08x)\n", what, s.Copied, s.Copied)
		l.log.Warn("load failed", zap.String("path", s.Path), zap.Error(err))
		return err
	}

	ms := s.Elapsed.Milliseconds()
	fmt.Fprintf(l.w, "\nLoaded %d bytes in %d.%02d sec.; ", s.Copied, ms/1000, (ms%1000)/10)
	if l.crc {
		s.CRC, s.HasCRC = crc32.ChecksumIEEE(l.m.RAM()[s.Base:s.Base+s.Copied]), true
		fmt.Fprintf(l.w, "CRC-32=0x%08X; ", s.CRC)
	}
	io.WriteString(l.w, "Starting...\n\n")

	if suppress {
		l.boot.Suppress()
	}
	l.log.Info("handoff",
		zap.String("path", s.Path),
		zap.String("size", humanize.IBytes(uint64(s.Copied))),
		zap.Duration("elapsed", s.Elapsed),
		zap.Uint32("entry", s.Base),
		zap.Bool("suppress", suppress))
	l.m.Jump(s.Base)
	return nil
}

func (l *Loader) hz() int {
	if hz := l.clock.Hz(); hz > 0 {
		return hz
	}
	return 100
}

// copy fills RAM[Base:Limit] from f one unit at a time.
func (l *Loader) copy(f io.Reader, s *Session) error {
	ram := l.m.RAM()
	if uint64(s.Limit) > uint64(len(ram)) || s.Base > s.Limit {
		return fmt.Errorf("load window 0x%x-0x%x outside RAM", s.Base, s.Limit)
	}
	if l.led != nil {
		defer l.led.Low()
	}
	pos := s.Base
	units := 0
	for {
		if pos == s.Limit {
			eof, err := atEOF(f)
			switch {
			case err != nil:
				return &fileop.ReadError{Offset: s.Copied, Err: err}
			case !eof:
				return &ImageTooLargeError{Offset: s.Copied}
			}
			return nil
		}
		end := min(pos+UnitSize, s.Limit)
		n, err := io.ReadFull(f, ram[pos:end])
		pos += uint32(n)
		s.Copied += uint32(n)
		if n > 0 {
			units++
			if units%DotUnits == 0 {
				io.WriteString(l.w, ".")
			}
			if l.led != nil {
				if units%2 == 1 {
					l.led.High()
				} else {
					l.led.Low()
				}
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return nil
		default:
			return &fileop.ReadError{Offset: s.Copied, Err: err}
		}
	}
}

// maxEmptyReads bounds the (0, nil) reads tolerated from a file.
const maxEmptyReads = 100

// atEOF reads one byte past a full window to tell a file that ends there
// from one that is too large.
func atEOF(f io.Reader) (bool, error) {
	var b [1]byte
	for range maxEmptyReads {
		n, err := f.Read(b[:])
		switch {
		case n > 0:
			return false, nil
		case errors.Is(err, io.EOF):
			return true, nil
		case err != nil:
			return false, err
		}
	}
	return false, io.ErrNoProgress
}
