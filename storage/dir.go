package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirVolume serves a host directory as the removable volume. Names are
// matched case-insensitively and the root can never be escaped.
type DirVolume struct {
	root string
}

// NewDirVolume returns a volume rooted at dir. An empty dir yields a volume
// without storage support.
func NewDirVolume(dir string) *DirVolume {
	return &DirVolume{root: dir}
}

// Root returns the host directory backing the volume.
func (v *DirVolume) Root() string { return v.root }

func (v *DirVolume) Supported() bool { return v != nil && v.root != "" }

// Init succeeds while the backing directory exists, like a card in its slot.
func (v *DirVolume) Init() error {
	if !v.Supported() {
		return ErrUnavailable
	}
	st, err := os.Stat(v.root)
	if err != nil || !st.IsDir() {
		return fmt.Errorf("mount %q: %w", v.root, ErrUnavailable)
	}
	return nil
}

// hostPath maps a volume path to a host path, folding case per component.
func (v *DirVolume) hostPath(path string) (string, error) {
	if err := v.Init(); err != nil {
		return "", err
	}
	cur := v.root
	for _, part := range splitPath(path) {
		next := filepath.Join(cur, part)
		if _, err := os.Lstat(next); err == nil {
			cur = next
			continue
		}
		ents, err := os.ReadDir(cur)
		if err != nil {
			return "", mapHostErr("lookup", err)
		}
		found := false
		for _, e := range ents {
			if strings.EqualFold(e.Name(), part) {
				cur = filepath.Join(cur, e.Name())
				found = true
				break
			}
		}
		if !found {
			return "", fmt.Errorf("lookup %q: %w", path, ErrNotFound)
		}
	}
	return cur, nil
}

func (v *DirVolume) ListDir(path string, fn func(name string, info Info) bool) error {
	hp, err := v.hostPath(path)
	if err != nil {
		return err
	}
	if st, err := os.Stat(hp); err == nil && !st.IsDir() {
		return fmt.Errorf("list %q: %w", path, ErrNotDir)
	}
	ents, err := os.ReadDir(hp)
	if err != nil {
		return mapHostErr("readdir", err)
	}
	if len(splitPath(path)) > 0 {
		if !fn(".", Info{Type: TypeDir}) || !fn("..", Info{Type: TypeDir}) {
			return nil
		}
	}
	for _, e := range ents {
		fi, err := e.Info()
		if err != nil {
			continue
		}
		if !fn(e.Name(), infoOf(fi)) {
			return nil
		}
	}
	return nil
}

func (v *DirVolume) Stat(path string) (Info, error) {
	hp, err := v.hostPath(path)
	if err != nil {
		return Info{}, err
	}
	fi, err := os.Stat(hp)
	if err != nil {
		return Info{}, mapHostErr("stat", err)
	}
	return infoOf(fi), nil
}

func (v *DirVolume) Open(path string) (File, error) {
	hp, err := v.hostPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(hp)
	if err != nil {
		return nil, mapHostErr("open", err)
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("open %q: %w", path, ErrIsDir)
	}
	return f, nil
}

func infoOf(fi fs.FileInfo) Info {
	if fi.IsDir() {
		return Info{Type: TypeDir}
	}
	size := fi.Size()
	if size > int64(^uint32(0)) {
		size = int64(^uint32(0))
	}
	return Info{Type: TypeFile, Size: uint32(size)}
}

func mapHostErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, fs.ErrPermission), errors.Is(err, fs.ErrInvalid):
		return fmt.Errorf("%s: %v: %w", op, err, ErrInvalid)
	default:
		return fmt.Errorf("%s: %v", op, err)
	}
}
