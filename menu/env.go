// Package menu holds the state shared by the menu loop and the shell, and
// the operations both of them offer.
package menu

import (
	"errors"

	"go.uber.org/zap"

	"sdmenu/menu/bootctl"
	"sdmenu/menu/console"
	"sdmenu/menu/fileop"
	"sdmenu/menu/loader"
	"sdmenu/menu/nav"
	"sdmenu/menu/render"
)

// Env is the single foreground context of the menu program.
type Env struct {
	Con    *console.Console
	Sess   *nav.Session
	Files  *fileop.Processor
	Loader *loader.Loader
	Boot   *bootctl.Controller
	Log    *zap.Logger

	// NoSDBoot is the operator's autoboot-suppression toggle.
	NoSDBoot bool
}

// CheckStorage waits for a usable volume and falls back to the root when the
// current directory has gone away. Any key but SPACE warm-boots.
func (e *Env) CheckStorage() {
	for {
		err := e.Sess.Volume().Init()
		if err == nil {
			break
		}
		e.Log.Warn("storage unavailable", zap.Error(err))
		e.Con.Print("\nNo SD card detected. SPACE to retry, other key to warm-boot: ")
		if e.Con.ReadChar() != ' ' {
			e.Con.Print("exit\n")
			e.Boot.WarmBoot(false)
		}
		e.Con.Print("retry\n")
	}
	if !e.Sess.Validate() {
		e.Con.Print("*** Current dir set to /\n")
	}
}

// ChangeDir enters name and reports failures on the console.
func (e *Env) ChangeDir(name string) {
	if err := e.Sess.Enter(name); err != nil {
		e.Con.Printf("*** Can't change dir to \"%s\"\n", e.Sess.Resolve(name))
		e.Log.Debug("cd failed", zap.Error(err))
	}
}

// FileOperation streams name through c between a header line and a blank
// line, reporting errors inline.
func (e *Env) FileOperation(name string, c fileop.Consumer) fileop.Result {
	e.Con.Printf("\n\"%s\":\n", e.Sess.Resolve(name))
	res, err := e.Files.Process(name, c)
	var re *fileop.ReadError
	switch {
	case err == nil:
	case errors.As(err, &re):
		e.Con.Printf("\n*** Read error at offset %d (0x%08x)\n", re.Offset, re.Offset)
	case errors.Is(err, fileop.ErrFileOpen):
		e.Con.Printf("\n*** Can't open \"%s\"\n", res.Path)
	default:
		e.Con.Printf("\n*** %v\n", err)
	}
	if err != nil {
		e.Log.Debug("file operation failed", zap.String("path", res.Path), zap.Error(err))
	}
	e.Con.Print("\n")
	return res
}

// Type shows a text file.
func (e *Env) Type(name string) {
	e.FileOperation(name, fileop.NewType(e.Con))
}

// Dump shows a file in hex and ASCII.
func (e *Env) Dump(name string) {
	e.FileOperation(name, fileop.NewDump(e.Con))
}

// CRC prints the size and CRC-32 of a file.
func (e *Env) CRC(name string) {
	c := fileop.NewCRC(e.Con)
	res := e.FileOperation(name, c)
	e.Con.Printf("\r%-4.4s\n%10d bytes, CRC-32=0x%08X\n", render.FriendlySize(res.Size), res.Size, c.Sum())
}

// Run loads and starts name. It returns only if the load failed; the loader
// has already reported the failure on the console.
func (e *Env) Run(name string) {
	if err := e.Loader.LoadAndRun(name, e.NoSDBoot); err != nil {
		e.Log.Debug("run failed", zap.String("name", name), zap.Error(err))
	}
}

// WarmBoot leaves the menu, suppressing the next SD boot if asked to.
func (e *Env) WarmBoot(suppress bool) {
	e.Boot.WarmBoot(suppress)
}
