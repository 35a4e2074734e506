//go:build !tinygo

package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"sdmenu/menu/nav"
	"sdmenu/storage"
)

// Finding is one problem the menu would run into.
type Finding struct {
	Dir     string
	Name    string
	Problem string
}

// check scans every directory of the card the way the menu does.
func check(root string, window uint32) ([]Finding, error) {
	vol := storage.NewDirVolume(root)
	if err := vol.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", errNoCard, err)
	}
	return checkVolume(vol, window)
}

func checkVolume(vol storage.Volume, window uint32) ([]Finding, error) {
	var out []Finding
	var walk func(dir string) error
	walk = func(dir string) error {
		sess := nav.NewSession(vol)
		if dir != "" {
			if err := sess.Enter("/" + dir); err != nil {
				return err
			}
		}
		here := cardPath(dir)
		st, err := sess.Scan(func(k nav.Kind) {
			limit := nav.MaxFiles
			if k == nav.KindDir {
				limit = nav.MaxDirs
			}
			out = append(out, Finding{Dir: here, Problem: fmt.Sprintf("more than %d menu %ss; the rest only show in the shell", limit, k)})
		})
		if err != nil {
			return fmt.Errorf("scan %s: %w", here, err)
		}
		for _, f := range st.Files {
			if !nav.IsText(f.Name) && f.Size > window {
				out = append(out, Finding{Dir: here, Name: f.Name, Problem: fmt.Sprintf(
					"image is %s, load window is %s", humanize.IBytes(uint64(f.Size)), humanize.IBytes(uint64(window)))})
			}
		}
		// Subdirectories are listed by the volume itself so the ones past
		// the menu limit are still checked.
		var subs []string
		err = vol.ListDir(here, func(name string, info storage.Info) bool {
			if info.Type == storage.TypeDir && name != "." && name != ".." {
				subs = append(subs, name)
			}
			return true
		})
		if err != nil {
			return fmt.Errorf("list %s: %w", here, err)
		}
		for _, s := range subs {
			next := s
			if dir != "" {
				next = dir + "/" + s
			}
			if len(cardPath(next)) > nav.MaxNameLen-1 {
				out = append(out, Finding{Dir: here, Name: s, Problem: "path too long to enter"})
				continue
			}
			if err := walk(next); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(""); err != nil {
		return nil, err
	}
	return out, nil
}

func report(w io.Writer, findings []Finding) {
	if len(findings) == 0 {
		fmt.Fprintln(w, "card OK")
		return
	}
	for _, f := range findings {
		if f.Name != "" {
			fmt.Fprintf(w, "%s: %s: %s\n", f.Dir, f.Name, f.Problem)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", f.Dir, f.Problem)
	}
	if len(findings) == 1 {
		fmt.Fprintln(w, "1 problem")
		return
	}
	fmt.Fprintf(w, "%d problems\n", len(findings))
}
