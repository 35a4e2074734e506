package nav

import (
	"strings"

	"sdmenu/storage"
)

// Kind tells menu files from menu directories.
type Kind uint8

const (
	KindFile Kind = iota + 1
	KindDir
)

func (k Kind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// Entry is one menu line.
type Entry struct {
	Name string
	Size uint32
	Kind Kind
}

// MenuState is the result of one directory scan. Files and Dirs hold at most
// MaxFiles and MaxDirs entries; the counts include the ones left out.
type MenuState struct {
	Files     []Entry
	Dirs      []Entry
	FileCount int
	DirCount  int

	TruncatedFiles bool
	TruncatedDirs  bool
}

// Empty reports whether the scan found nothing to show.
func (m MenuState) Empty() bool { return m.FileCount == 0 && m.DirCount == 0 }

// IsMenuFile reports whether name is a runnable image or a text file.
func IsMenuFile(name string) bool {
	if len(name) < 4 {
		return false
	}
	ext := name[len(name)-4:]
	return strings.EqualFold(ext, ".bin") || strings.EqualFold(ext, ".txt")
}

// IsText reports whether a menu file is shown rather than run.
func IsText(name string) bool {
	return name != "" && (name[len(name)-1]|0x20) == 't'
}

// Scan lists the current directory. onOverflow, if set, is called once per
// kind when the menu runs out of keys.
func (s *Session) Scan(onOverflow func(Kind)) (MenuState, error) {
	var st MenuState
	err := s.vol.ListDir(s.Resolve(""), func(name string, info storage.Info) bool {
		name = truncate(name)
		switch {
		case info.Type != storage.TypeDir:
			if !IsMenuFile(name) {
				return true
			}
			if st.FileCount < MaxFiles {
				st.Files = append(st.Files, Entry{Name: name, Size: info.Size, Kind: KindFile})
			} else if !st.TruncatedFiles {
				st.TruncatedFiles = true
				if onOverflow != nil {
					onOverflow(KindFile)
				}
			}
			st.FileCount++
		case name != ".":
			if st.DirCount < MaxDirs {
				st.Dirs = append(st.Dirs, Entry{Name: name, Kind: KindDir})
			} else if !st.TruncatedDirs {
				st.TruncatedDirs = true
				if onOverflow != nil {
					onOverflow(KindDir)
				}
			}
			st.DirCount++
		}
		return true
	})
	return st, err
}
