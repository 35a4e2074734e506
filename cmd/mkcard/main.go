//go:build !tinygo

// Command mkcard fills a host directory that the simulator serves as its SD
// card and reports how the menu will see it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"sdmenu/internal/config"
)

func main() {
	if err := command(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func command(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "mkcard",
		Usage: "populate an SD card directory and check it against the menu limits",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "src", Usage: "source tree copied into the card", TakesFile: true},
			&cli.StringFlag{Name: "out", Usage: "card root directory (default: storage root from config)", TakesFile: true},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "TOML machine config for the load window", TakesFile: true},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			out := cmd.String("out")
			if out == "" {
				out = cfg.Storage.Root
			}
			if src := cmd.String("src"); src != "" {
				if err := populate(src, out); err != nil {
					return err
				}
			}
			l := cfg.Layout()
			findings, err := check(out, l.InitialStack-l.LoadAddress)
			if err != nil {
				return err
			}
			report(stdout, findings)
			if len(findings) > 0 {
				return errCardProblems
			}
			return nil
		},
	}
}

// populate copies the regular files and directories of src below dst.
func populate(src, dst string) error {
	src = filepath.Clean(src)
	st, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat src %q: %w", src, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("src %q is not a directory", src)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("create card root %q: %w", dst, err)
	}

	var dirs, files []string
	walkErr := filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == src || entry.Type()&os.ModeSymlink != 0 {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		switch {
		case entry.IsDir():
			dirs = append(dirs, rel)
		case entry.Type().IsRegular():
			files = append(files, rel)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walk src %q: %w", src, walkErr)
	}

	sort.Strings(dirs)
	sort.Strings(files)
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dst, d), 0o755); err != nil {
			return fmt.Errorf("mkdir %q: %w", d, err)
		}
	}
	for _, f := range files {
		if err := copyFile(filepath.Join(src, f), filepath.Join(dst, f)); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("open %q: %w", from, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("create %q: %w", to, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %q: %w", from, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %q: %w", to, err)
	}
	return nil
}

var (
	errNoCard       = errors.New("card root missing")
	errCardProblems = errors.New("card has problems")
)

func cardPath(dir string) string {
	if dir == "" {
		return "/"
	}
	return "/" + strings.Trim(dir, "/")
}
