// Package storage is the boundary to the removable storage driver.
//
// Paths are absolute and '/'-separated. A trailing separator is accepted and
// ignored. Lookups are case-insensitive, like the FAT volumes the menu runs on.
package storage

import (
	"errors"
	"strings"
)

// MaxNameLen is the long-name buffer size of the FAT driver, terminator included.
const MaxNameLen = 260

var (
	// ErrUnavailable indicates that no medium is present or it failed to mount.
	ErrUnavailable = errors.New("storage: volume unavailable")
	// ErrNotFound indicates that a path does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrNotDir indicates that a path is not a directory.
	ErrNotDir = errors.New("storage: not a directory")
	// ErrIsDir indicates that a path is a directory when a file was expected.
	ErrIsDir = errors.New("storage: is a directory")
	// ErrInvalid indicates an invalid path or filesystem state.
	ErrInvalid = errors.New("storage: invalid")
)

// Type is the kind of a directory entry.
type Type uint8

const (
	TypeFile Type = iota + 1
	TypeDir
)

// Info describes a directory entry.
type Info struct {
	Type Type
	Size uint32
}

// File is an open, read-only file.
//
// Read follows io.Reader: a short read followed by io.EOF marks the end of
// the file, any other error is a medium failure.
type File interface {
	Read(p []byte) (int, error)
	Close() error
}

// Volume is a mounted (or mountable) storage medium.
type Volume interface {
	// Supported reports whether a storage driver exists at all.
	Supported() bool
	// Init detects and mounts the medium. It is cheap when already mounted.
	Init() error
	// ListDir calls fn for every entry of path in on-disk order until fn
	// returns false. Subdirectories report "." and ".." entries first.
	ListDir(path string, fn func(name string, info Info) bool) error
	Stat(path string) (Info, error)
	Open(path string) (File, error)
}

// IsDir reports whether path names an existing directory.
func IsDir(v Volume, path string) bool {
	if v == nil {
		return false
	}
	info, err := v.Stat(path)
	return err == nil && info.Type == TypeDir
}

// splitPath returns the non-empty components of an absolute path.
func splitPath(p string) []string {
	var out []string
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, part)
		}
	}
	return out
}
