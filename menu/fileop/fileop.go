// Package fileop streams a file from the volume through a consumer in
// fixed-size chunks.
package fileop

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"sdmenu/menu/nav"
	"sdmenu/storage"
)

// ChunkSize is the unit files are read in.
const ChunkSize = 512

// ErrFileOpen is returned when neither the name nor its short form opens.
var ErrFileOpen = errors.New("can't open")

// ReadError reports a failed read. Offset counts the bytes delivered before it.
type ReadError struct {
	Offset uint32
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read error at offset %d (0x%08x): %v", e.Offset, e.Offset, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Consumer receives each chunk in order. off is the file offset of chunk[0].
type Consumer interface {
	Consume(off uint32, chunk []byte) error
}

// Finisher is implemented by consumers that flush state once the whole file
// has been read.
type Finisher interface {
	Finish(size uint32)
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(off uint32, chunk []byte) error

func (f ConsumerFunc) Consume(off uint32, chunk []byte) error { return f(off, chunk) }

// Result describes a processed file.
type Result struct {
	Path string
	Size uint32
}

// ShortName returns path with the extension of its last element forced to
// exactly three characters, as FAT stores 8.3 names. It reports false when
// that gives nothing new to try.
func ShortName(path string) (string, bool) {
	base := strings.LastIndexByte(path, '/') + 1
	dot := strings.LastIndexByte(path[base:], '.')
	if dot < 0 {
		return path, false
	}
	dot += base
	ext := path[dot+1:]
	if len(ext) > 3 {
		ext = ext[:3]
	}
	ext += strings.Repeat(" ", 3-len(ext))
	short := path[:dot+1] + ext
	return short, short != path
}

// Open opens path on vol, retrying once with its short name.
func Open(vol storage.Volume, path string) (storage.File, error) {
	f, err := vol.Open(path)
	if err == nil {
		return f, nil
	}
	if short, ok := ShortName(path); ok {
		if f, serr := vol.Open(short); serr == nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w %q: %v", ErrFileOpen, path, err)
}

// Processor runs consumers over files named relative to a session.
type Processor struct {
	sess *nav.Session
	buf  [ChunkSize]byte
}

func NewProcessor(sess *nav.Session) *Processor {
	return &Processor{sess: sess}
}

// Process reads name to the end, handing every chunk to c. The final chunk
// may be short. Result.Size is the byte count delivered, also on error.
func (p *Processor) Process(name string, c Consumer) (Result, error) {
	res := Result{Path: p.sess.Resolve(name)}
	f, err := Open(p.sess.Volume(), res.Path)
	if err != nil {
		return res, err
	}
	defer func() { _ = f.Close() }()

	for {
		n, err := io.ReadFull(f, p.buf[:])
		if n > 0 {
			if cerr := c.Consume(res.Size, p.buf[:n]); cerr != nil {
				return res, cerr
			}
			res.Size += uint32(n)
		}
		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			if fin, ok := c.(Finisher); ok {
				fin.Finish(res.Size)
			}
			return res, nil
		default:
			return res, &ReadError{Offset: res.Size, Err: err}
		}
	}
}
