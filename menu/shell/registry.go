package shell

import (
	"fmt"
	"strings"
)

// CommandKind identifies a shell command.
type CommandKind uint8

const (
	CmdDir CommandKind = iota
	CmdCd
	CmdRun
	CmdType
	CmdDump
	CmdCrc
	CmdBoot
	CmdUpload
	CmdExit
)

// Arity is the argument a command takes, as shown in the help table.
type Arity uint8

const (
	ArgNone Arity = iota
	ArgDir
	ArgFile
)

func (a Arity) String() string {
	switch a {
	case ArgDir:
		return "[dir]"
	case ArgFile:
		return "<file>"
	default:
		return ""
	}
}

// Descriptor describes one command.
type Descriptor struct {
	Kind  CommandKind
	Name  string
	Alias string
	Help  string
	Arity Arity
}

// newTable returns the commands in help order.
func newTable() []Descriptor {
	return []Descriptor{
		{CmdDir, "dir", "ls", "Directory listing", ArgDir},
		{CmdCd, "cd", "", "Change current dir", ArgDir},
		{CmdRun, "run", "", "Load and execute BIN file", ArgFile},
		{CmdType, "type", "cat", "Display ASCII file", ArgFile},
		{CmdDump, "dump", "", "Dump file in hex and ASCII", ArgFile},
		{CmdCrc, "crc", "", "CRC-32 of file", ArgFile},
		{CmdBoot, "boot", "", "Warm-boot", ArgNone},
		{CmdUpload, "upload", "/", "Warm-boot without SD card boot", ArgNone},
		{CmdExit, "exit", "x", "Exit to menu in current dir", ArgNone},
	}
}

type registry struct {
	table  []Descriptor
	lookup map[string]int
}

func newRegistry(table []Descriptor) (*registry, error) {
	r := &registry{lookup: make(map[string]int)}
	for _, d := range table {
		if err := r.register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *registry) register(d Descriptor) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return fmt.Errorf("shell registry: empty command name")
	}
	names := []string{d.Name}
	if a := strings.TrimSpace(d.Alias); a != "" {
		names = append(names, a)
	}
	for _, n := range names {
		key := strings.ToLower(n)
		if _, ok := r.lookup[key]; ok {
			return fmt.Errorf("shell registry: duplicate name %q", n)
		}
		r.lookup[key] = len(r.table)
	}
	r.table = append(r.table, d)
	return nil
}

// resolve looks a command up by name or alias, ignoring case.
func (r *registry) resolve(name string) (Descriptor, bool) {
	i, ok := r.lookup[strings.ToLower(name)]
	if !ok {
		return Descriptor{}, false
	}
	return r.table[i], true
}

// Tokenize splits a command line into the command word and the rest of the
// line with surrounding spaces removed.
func Tokenize(line string) (cmd, arg string) {
	line = strings.TrimLeft(line, " ")
	cmd, arg, _ = strings.Cut(line, " ")
	return cmd, strings.Trim(arg, " ")
}
