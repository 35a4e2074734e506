// Package config loads the machine and menu settings for the host build.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap/zapcore"

	"sdmenu/hal"
)

// RootEnv overrides the storage root of any config file.
const RootEnv = "SDMENU_ROOT"

type Config struct {
	Machine Machine `toml:"machine"`
	Storage Storage `toml:"storage"`
	Loader  Loader  `toml:"loader"`
	Log     Log     `toml:"log"`

	// The path the config was loaded from, empty for built-in defaults.
	LoadPath string `toml:"-"`
}

type Machine struct {
	// RAMSize is a human readable size ("1MiB", "512k"). RAM ends at MemTop.
	RAMSize      string `toml:"ram_size"`
	LoadAddress  uint32 `toml:"load_address"`
	InitialStack uint32 `toml:"initial_stack"`
	TickHz       int    `toml:"tick_hz"`
	FirmwareRev  uint32 `toml:"firmware_rev"`
}

type Storage struct {
	Root string `toml:"root"`
}

type Loader struct {
	// CRC prints the CRC-32 of every image before it starts.
	CRC bool `toml:"crc"`
}

type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the stock 1 MiB machine.
func Default() Config {
	return Config{
		Machine: Machine{
			RAMSize:      "1MiB",
			LoadAddress:  0x40000,
			InitialStack: 0xFFC00,
			TickHz:       100,
			FirmwareRev:  0x0100,
		},
		Storage: Storage{Root: "sdcard"},
		Loader:  Loader{CRC: true},
		Log:     Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path uses the defaults alone.
// The RootEnv environment variable wins over both.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
		cfg.LoadPath = path
	}
	if root := os.Getenv(RootEnv); root != "" {
		cfg.Storage.Root = root
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RAMBytes returns the parsed RAM size.
func (c Config) RAMBytes() (uint64, error) {
	n, err := humanize.ParseBytes(c.Machine.RAMSize)
	if err != nil {
		return 0, fmt.Errorf("ram_size %q: %w", c.Machine.RAMSize, err)
	}
	return n, nil
}

// Layout returns the machine memory map. RAM must already be validated.
func (c Config) Layout() hal.Layout {
	ram, _ := c.RAMBytes()
	return hal.Layout{
		LoadAddress:  c.Machine.LoadAddress,
		InitialStack: c.Machine.InitialStack,
		MemTop:       uint32(ram),
	}
}

// Level returns the zap level named by Log.Level.
func (c Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.Log.Level)
}

func (c Config) Validate() error {
	ram, err := c.RAMBytes()
	if err != nil {
		return err
	}
	switch {
	case ram == 0 || ram > 1<<32-1:
		return fmt.Errorf("ram_size %s: must be between 1 byte and 4 GiB", humanize.IBytes(ram))
	case c.Machine.LoadAddress >= c.Machine.InitialStack:
		return fmt.Errorf("load_address 0x%x must be below initial_stack 0x%x",
			c.Machine.LoadAddress, c.Machine.InitialStack)
	case uint64(c.Machine.InitialStack) > ram:
		return fmt.Errorf("initial_stack 0x%x beyond %s of RAM", c.Machine.InitialStack, humanize.IBytes(ram))
	case c.Machine.TickHz <= 0 || c.Machine.TickHz > 10000:
		return fmt.Errorf("tick_hz %d: must be between 1 and 10000", c.Machine.TickHz)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}
