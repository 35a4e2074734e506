// Package shell is the nano-shell behind the menu: one command per line,
// working on the menu's current directory.
package shell

import (
	"go.uber.org/zap"

	"sdmenu/internal/buildinfo"
	"sdmenu/menu"
)

// Shell runs commands against a menu environment.
type Shell struct {
	env *menu.Env
	reg *registry
}

func New(env *menu.Env) (*Shell, error) {
	reg, err := newRegistry(newTable())
	if err != nil {
		return nil, err
	}
	return &Shell{env: env, reg: reg}, nil
}

// Run prompts for commands until exit. Commands that boot or load never
// come back here.
func (s *Shell) Run() {
	con := s.env.Con
	con.Printf("\nSD Card nano-shell prompt (built %s)\n\n", buildinfo.Built())
	for {
		s.env.CheckStorage()
		con.Printf("%s> ", s.env.Sess.Resolve(""))
		if s.Exec(con.ReadLine()) {
			return
		}
	}
}

// Exec runs one command line and reports whether the shell should exit.
func (s *Shell) Exec(line string) bool {
	name, arg := Tokenize(line)
	if name == "" {
		return false
	}
	d, ok := s.reg.resolve(name)
	if !ok {
		s.help()
		return false
	}
	s.env.Log.Debug("shell command", zap.String("cmd", d.Name), zap.String("arg", arg))

	e := s.env
	switch d.Kind {
	case CmdExit:
		e.Con.Print("\nExit to menu.\n")
		return true
	case CmdDir:
		s.dir(arg)
	case CmdCd:
		e.ChangeDir(arg)
	case CmdRun:
		e.Run(arg)
	case CmdType:
		e.Type(arg)
	case CmdDump:
		e.Dump(arg)
	case CmdCrc:
		e.CRC(arg)
	case CmdBoot:
		e.WarmBoot(e.NoSDBoot)
	case CmdUpload:
		e.WarmBoot(true)
	}
	return false
}

func (s *Shell) help() {
	con := s.env.Con
	con.Print("SD Card prompt commands:\n")
	for _, d := range s.reg.table {
		con.Printf(" %-8.8s %-6.6s %s", d.Name, d.Arity, d.Help)
		if d.Alias != "" {
			con.Printf(" (alias %s)", d.Alias)
		}
		con.Print("\n")
	}
}
