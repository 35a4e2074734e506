// Package render draws the menu screen: two-column key layout, friendly
// sizes and the status header.
package render

import (
	"fmt"
	"io"

	"sdmenu/menu/nav"
)

// Key returns the key for entry i of n. Keys run down the left column first,
// then down the right one: entry i sits in row i/2, column i%2.
func Key(base byte, i, n int) byte {
	half := (n + 1) / 2
	k := base + byte(i/2)
	if i%2 == 1 {
		k += byte(half)
	}
	return k
}

// Index is the inverse of Key. It reports false for keys with no entry.
func Index(base, key byte, n int) (int, bool) {
	if key < base {
		return 0, false
	}
	r := int(key - base)
	half := (n + 1) / 2
	var i int
	if r >= half {
		i = (r-half)*2 + 1
	} else {
		i = r * 2
	}
	if i >= n {
		return 0, false
	}
	return i, true
}

// FriendlySize formats v in at most four characters: 321B, 4.2K, 42M, 3.1G.
func FriendlySize(v uint32) string {
	units := uint64(1)
	label := 'B'
	if v > 999 {
		switch {
		case v < 999*1024:
			units, label = 1024, 'K'
		case v < 999*1024*1024:
			units, label = 1024*1024, 'M'
		default:
			units, label = 1024*1024*1024, 'G'
		}
	}
	x := uint64(v)
	if units > 1 {
		if tenths := (x*10 + units/2) / units; tenths < 100 {
			return fmt.Sprintf("%d.%d%c", tenths/10, tenths%10, label)
		}
	}
	return fmt.Sprintf("%d%c", (x+units/2)/units, label)
}

// Uptime formats a tick count as minutes:seconds.
func Uptime(ticks uint64, hz int) string {
	if hz <= 0 {
		hz = 100
	}
	secs := ticks / uint64(hz)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// MemString formats the program memory size in KiB, rounded up.
func MemString(initialStack uint32) string {
	return fmt.Sprintf("%dK", (uint64(initialStack)+1023)/1024)
}

// Header is the status line above the menu.
type Header struct {
	Dir    string
	Mem    string
	Uptime string
}

// Menu prints the header and the entries, two per line. The column state
// carries over from files into directories.
func Menu(w io.Writer, st nav.MenuState, h Header) {
	fmt.Fprintf(w, "\nDir: %-34.34s <Mem %-6.6s Uptime %s>\n", h.Dir, h.Mem, h.Uptime)
	odd := false
	end := func() string {
		defer func() { odd = !odd }()
		if odd {
			return "\n"
		}
		return "  "
	}
	n := len(st.Files)
	for i, e := range st.Files {
		fmt.Fprintf(w, "[%4s] %c - %-28.28s", FriendlySize(e.Size), Key('A', i, n), e.Name)
		io.WriteString(w, end())
	}
	n = len(st.Dirs)
	for i, e := range st.Dirs {
		fmt.Fprintf(w, "<Dir>  %c = %-28.28s", Key('0', i, n), e.Name)
		io.WriteString(w, end())
	}
	if odd {
		io.WriteString(w, "\n")
	}
}

// Prompt prints the key ranges the menu accepts.
func Prompt(w io.Writer, st nav.MenuState) {
	io.WriteString(w, "\nPress ")
	if n := len(st.Files); n > 0 {
		fmt.Fprintf(w, "A-%c to run, ", 'A'+n-1)
	}
	if n := len(st.Dirs); n > 0 {
		fmt.Fprintf(w, "0-%c for dir, ", '0'+n-1)
	}
	io.WriteString(w, "RETURN for prompt, SPACE to reload:")
}
