package storage

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// MemVolume is an in-memory volume with FAT-like listing order and
// case-insensitive names. Medium presence and read failures can be simulated.
type MemVolume struct {
	mu sync.Mutex

	root    *memNode
	present bool
	mounted bool
	noSD    bool
}

type memNode struct {
	name     string
	dir      bool
	data     []byte
	failAt   int
	children []*memNode
}

// NewMemVolume returns an empty, present volume.
func NewMemVolume() *MemVolume {
	return &MemVolume{root: &memNode{dir: true}, present: true}
}

// SetPresent simulates inserting or removing the medium.
func (v *MemVolume) SetPresent(present bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.present = present
	if !present {
		v.mounted = false
	}
}

// SetSupported simulates firmware without a storage driver.
func (v *MemVolume) SetSupported(supported bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.noSD = !supported
}

// AddDir creates path and any missing parents.
func (v *MemVolume) AddDir(path string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mkdirs(splitPath(path))
}

// AddFile creates or replaces a file, creating missing parents.
func (v *MemVolume) AddFile(path string, data []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	parts := splitPath(path)
	if len(parts) == 0 {
		return
	}
	dir := v.mkdirs(parts[:len(parts)-1])
	name := parts[len(parts)-1]
	if n := dir.child(name); n != nil {
		n.dir = false
		n.data = data
		n.failAt = -1
		return
	}
	dir.children = append(dir.children, &memNode{name: name, data: data, failAt: -1})
}

// FailReadAt makes reads of path fail once off bytes have been returned.
func (v *MemVolume) FailReadAt(path string, off int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	n, err := v.lookup(path)
	if err != nil {
		return err
	}
	if n.dir {
		return fmt.Errorf("fail read %q: %w", path, ErrIsDir)
	}
	n.failAt = off
	return nil
}

func (v *MemVolume) mkdirs(parts []string) *memNode {
	n := v.root
	for _, p := range parts {
		c := n.child(p)
		if c == nil {
			c = &memNode{name: p, dir: true}
			n.children = append(n.children, c)
		}
		n = c
	}
	return n
}

func (n *memNode) child(name string) *memNode {
	for _, c := range n.children {
		if strings.EqualFold(c.name, name) {
			return c
		}
	}
	return nil
}

func (v *MemVolume) Supported() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.noSD
}

func (v *MemVolume) Init() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.present || v.noSD {
		return ErrUnavailable
	}
	v.mounted = true
	return nil
}

func (v *MemVolume) lookup(path string) (*memNode, error) {
	n := v.root
	for _, p := range splitPath(path) {
		if !n.dir {
			return nil, fmt.Errorf("lookup %q: %w", path, ErrNotDir)
		}
		n = n.child(p)
		if n == nil {
			return nil, fmt.Errorf("lookup %q: %w", path, ErrNotFound)
		}
	}
	return n, nil
}

func (v *MemVolume) ready() error {
	if !v.present || !v.mounted {
		return ErrUnavailable
	}
	return nil
}

func (v *MemVolume) ListDir(path string, fn func(name string, info Info) bool) error {
	v.mu.Lock()
	n, err := v.lookup(path)
	if err == nil {
		err = v.ready()
	}
	if err != nil {
		v.mu.Unlock()
		return err
	}
	if !n.dir {
		v.mu.Unlock()
		return fmt.Errorf("list %q: %w", path, ErrNotDir)
	}

	type ent struct {
		name string
		info Info
	}
	var ents []ent
	if n != v.root {
		ents = append(ents, ent{".", Info{Type: TypeDir}}, ent{"..", Info{Type: TypeDir}})
	}
	for _, c := range n.children {
		if c.dir {
			ents = append(ents, ent{c.name, Info{Type: TypeDir}})
		} else {
			ents = append(ents, ent{c.name, Info{Type: TypeFile, Size: uint32(len(c.data))}})
		}
	}
	v.mu.Unlock()

	for _, e := range ents {
		if !fn(e.name, e.info) {
			return nil
		}
	}
	return nil
}

func (v *MemVolume) Stat(path string) (Info, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.ready(); err != nil {
		return Info{}, err
	}
	n, err := v.lookup(path)
	if err != nil {
		return Info{}, err
	}
	if n.dir {
		return Info{Type: TypeDir}, nil
	}
	return Info{Type: TypeFile, Size: uint32(len(n.data))}, nil
}

func (v *MemVolume) Open(path string) (File, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.ready(); err != nil {
		return nil, err
	}
	n, err := v.lookup(path)
	if err != nil {
		return nil, err
	}
	if n.dir {
		return nil, fmt.Errorf("open %q: %w", path, ErrIsDir)
	}
	return &memFile{data: n.data, failAt: n.failAt}, nil
}

// ErrMedium is returned by reads that hit a simulated medium failure.
var ErrMedium = errors.New("storage: medium error")

type memFile struct {
	data   []byte
	off    int
	failAt int
	closed bool
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.closed {
		return 0, ErrInvalid
	}
	if f.failAt >= 0 && f.off >= f.failAt {
		return 0, ErrMedium
	}
	if f.off >= len(f.data) {
		return 0, io.EOF
	}
	end := f.off + len(p)
	if end > len(f.data) {
		end = len(f.data)
	}
	if f.failAt >= 0 && end > f.failAt {
		end = f.failAt
	}
	n := copy(p, f.data[f.off:end])
	f.off += n
	return n, nil
}

func (f *memFile) Close() error {
	f.closed = true
	return nil
}
