package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"tinygo.org/x/tinyfs"
)

// TinyFS adapts a tinyfs.Filesystem (FAT on an SD card, or any other tinyfs
// backend) to a read-only Volume.
type TinyFS struct {
	mu sync.Mutex

	fs      tinyfs.Filesystem
	probe   func() error
	mapErr  func(op string, err error) error
	mounted bool
}

// TinyFSOption configures a TinyFS.
type TinyFSOption func(*TinyFS)

// WithProbe sets a card-detect hook run before every mount attempt.
func WithProbe(probe func() error) TinyFSOption {
	return func(t *TinyFS) { t.probe = probe }
}

// WithErrorMapper sets the driver-specific error translation.
func WithErrorMapper(fn func(op string, err error) error) TinyFSOption {
	return func(t *TinyFS) { t.mapErr = fn }
}

// NewTinyFS wraps fs. A nil fs yields a volume that is not supported.
func NewTinyFS(fs tinyfs.Filesystem, opts ...TinyFSOption) *TinyFS {
	t := &TinyFS{fs: fs, mapErr: mapOSErr}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *TinyFS) Supported() bool { return t != nil && t.fs != nil }

func (t *TinyFS) Init() error {
	if !t.Supported() {
		return ErrUnavailable
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.probe != nil {
		if err := t.probe(); err != nil {
			t.mounted = false
			return fmt.Errorf("probe: %v: %w", err, ErrUnavailable)
		}
	}
	if t.mounted {
		return nil
	}
	// Removable media is never formatted here.
	if err := t.fs.Mount(); err != nil {
		return fmt.Errorf("mount: %v: %w", err, ErrUnavailable)
	}
	t.mounted = true
	return nil
}

func (t *TinyFS) ready() error {
	if !t.Supported() {
		return ErrUnavailable
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.mounted {
		return ErrUnavailable
	}
	return nil
}

func (t *TinyFS) ListDir(path string, fn func(name string, info Info) bool) error {
	if err := t.ready(); err != nil {
		return err
	}
	f, err := t.fs.OpenFile(path, os.O_RDONLY)
	if err != nil {
		return t.mapErr("open dir", err)
	}
	defer func() { _ = f.Close() }()
	if !f.IsDir() {
		return fmt.Errorf("list %q: %w", path, ErrNotDir)
	}

	entries, err := f.Readdir(0)
	if err != nil {
		return t.mapErr("readdir", err)
	}
	for _, e := range entries {
		info := Info{Type: TypeFile, Size: uint32(e.Size())}
		if e.IsDir() {
			info = Info{Type: TypeDir}
		}
		if !fn(e.Name(), info) {
			return nil
		}
	}
	return nil
}

func (t *TinyFS) Stat(path string) (Info, error) {
	if err := t.ready(); err != nil {
		return Info{}, err
	}
	if len(splitPath(path)) == 0 {
		return Info{Type: TypeDir}, nil
	}
	fi, err := t.fs.Stat(path)
	if err != nil {
		return Info{}, t.mapErr("stat", err)
	}
	if fi.IsDir() {
		return Info{Type: TypeDir}, nil
	}
	return Info{Type: TypeFile, Size: uint32(fi.Size())}, nil
}

func (t *TinyFS) Open(path string) (File, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	f, err := t.fs.OpenFile(path, os.O_RDONLY)
	if err != nil {
		return nil, t.mapErr("open", err)
	}
	if f.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("open %q: %w", path, ErrIsDir)
	}
	return &tinyFile{f: f, mapErr: t.mapErr}, nil
}

type tinyFile struct {
	f      tinyfs.File
	mapErr func(op string, err error) error
}

func (f *tinyFile) Read(p []byte) (int, error) {
	n, err := f.f.Read(p)
	if err == nil || errors.Is(err, io.EOF) {
		return n, err
	}
	return n, f.mapErr("read", err)
}

func (f *tinyFile) Close() error {
	return f.f.Close()
}

func mapOSErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, os.ErrInvalid):
		return fmt.Errorf("%s: %w", op, ErrInvalid)
	default:
		return fmt.Errorf("%s: %v", op, err)
	}
}
