package shell

import (
	"sdmenu/menu/render"
	"sdmenu/storage"
)

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// dir lists a directory with a count and total size summary. The total
// saturates at the largest 32-bit value.
func (s *Shell) dir(name string) {
	con := s.env.Con
	path := s.env.Sess.Resolve(name)
	con.Printf("Directory: %s\n", path)

	var files, dirs int
	var total uint32
	err := s.env.Sess.Volume().ListDir(path, func(n string, info storage.Info) bool {
		switch {
		case info.Type != storage.TypeDir:
			con.Printf("%10d  %s\n", info.Size, n)
			if sum := total + info.Size; sum < total {
				total = ^uint32(0)
			} else {
				total = sum
			}
			files++
		case n != ".":
			con.Printf("  <Dir>     %s\n", n)
			dirs++
		}
		return true
	})
	if err != nil {
		con.Printf("*** Can't dir \"%s\"\n", path)
		return
	}

	over := ""
	if total == ^uint32(0) {
		over = "> "
	}
	con.Printf("\n%d file%s, %d dir%s, total size %s%d bytes (%s)\n",
		files, plural(files), dirs, plural(dirs), over, total, render.FriendlySize(total))
}
