// Package nav keeps the current directory of the menu and turns directory
// listings into menu entries.
package nav

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"sdmenu/storage"
)

const (
	// MaxFiles is the number of menu files, keyed A to Z.
	MaxFiles = 26
	// MaxDirs is the number of menu directories, keyed 0 to 9.
	MaxDirs = 10
	// MaxNameLen bounds names and paths, terminator included.
	MaxNameLen = storage.MaxNameLen
)

// ErrDirectoryInvalid is returned when a name does not resolve to a directory.
var ErrDirectoryInvalid = errors.New("not a directory")

// Session is the navigation state shared by the menu and the shell.
type Session struct {
	vol storage.Volume
	// cwd has no leading or trailing separator. Root is "".
	cwd string
}

func NewSession(vol storage.Volume) *Session {
	return &Session{vol: vol}
}

// Volume returns the storage the session navigates.
func (s *Session) Volume() storage.Volume { return s.vol }

// Cwd returns the current directory without a leading separator.
func (s *Session) Cwd() string { return s.cwd }

// Resolve returns the absolute path of name. Absolute names are kept as
// given; relative names are joined to the current directory and cleaned,
// never climbing above the root.
func (s *Session) Resolve(name string) string {
	var p string
	if strings.HasPrefix(name, "/") {
		p = name
	} else {
		p = path.Clean("/" + s.cwd + "/" + name)
	}
	return truncate(p)
}

// Enter changes into name. ".." goes to the parent directory. The stored
// directory is always clean, even when name is an absolute path that is not.
func (s *Session) Enter(name string) error {
	if name == ".." {
		s.Leave()
		return nil
	}
	p := path.Clean(s.Resolve(name))
	if !storage.IsDir(s.vol, p) {
		return fmt.Errorf("%q: %w", p, ErrDirectoryInvalid)
	}
	s.cwd = strings.Trim(p, "/")
	return nil
}

// Leave moves to the parent directory. It does nothing at the root.
func (s *Session) Leave() {
	cwd := strings.TrimSuffix(s.cwd, "/")
	if cwd == "" {
		s.cwd = ""
		return
	}
	if i := strings.LastIndexByte(cwd, '/'); i >= 0 {
		s.cwd = cwd[:i]
		return
	}
	s.cwd = ""
}

// Validate resets the session to the root if the current directory is gone
// and reports whether it was still valid.
func (s *Session) Validate() bool {
	if storage.IsDir(s.vol, s.Resolve("")) {
		return true
	}
	s.cwd = ""
	return false
}

func truncate(p string) string {
	if len(p) > MaxNameLen-1 {
		return p[:MaxNameLen-1]
	}
	return p
}
