//go:build !tinygo

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"sdmenu/app"
	"sdmenu/hal"
	"sdmenu/internal/buildinfo"
	"sdmenu/internal/config"
	"sdmenu/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := command().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func command() *cli.Command {
	return &cli.Command{
		Name:    "sdmenu",
		Usage:   "SD card boot menu on a simulated machine",
		Version: buildinfo.Built(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "TOML machine config", TakesFile: true},
			&cli.StringFlag{Name: "root", Usage: "host directory served as the SD card (overrides config)", TakesFile: true},
			&cli.BoolFlag{Name: "window", Usage: "open a window with a framebuffer console"},
			&cli.BoolFlag{Name: "headless", Usage: "read stdin line by line instead of a raw terminal"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (overrides config)"},
			&cli.StringFlag{Name: "log-file", Usage: "write logs here instead of stderr", TakesFile: true},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("window") && cmd.Bool("headless") {
		return errors.New("--window and --headless are mutually exclusive")
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if root := cmd.String("root"); root != "" {
		cfg.Storage.Root = root
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if f := cmd.String("log-file"); f != "" {
		cfg.Log.File = f
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := cfg.Level()
	log, err := logging.New(level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ram, _ := cfg.RAMBytes()
	hc := hal.HostConfig{
		Mode:        hal.ConsoleTerminal,
		Root:        cfg.Storage.Root,
		RAMSize:     int(ram),
		Layout:      cfg.Layout(),
		Hz:          cfg.Machine.TickHz,
		FirmwareRev: cfg.Machine.FirmwareRev,
		Log:         log,
	}
	switch {
	case cmd.Bool("window"):
		hc.Mode = hal.ConsoleWindow
	case cmd.Bool("headless"):
		hc.Mode = hal.ConsoleHeadless
	}
	log.Info("power on",
		zap.String("build", buildinfo.Built()),
		zap.String("config", cfg.LoadPath),
		zap.String("root", hc.Root),
		zap.String("ram", humanize.IBytes(ram)),
		zap.String("window", fmt.Sprintf("0x%x-0x%x", hc.Layout.LoadAddress, hc.Layout.InitialStack)))

	// The firmware is created on first entry so the tick counter survives
	// warm boots.
	var fw *app.Firmware
	res, err := hal.RunHost(ctx, hc, func(h hal.HAL) {
		if fw == nil {
			fw = app.New(ctx, h, app.Config{CRC: cfg.Loader.CRC, Log: log})
		}
		fw.Boot(h)
	})
	if err != nil {
		return err
	}
	return report(log, cfg, res)
}

func report(log *zap.Logger, cfg config.Config, res hal.HostResult) error {
	switch res.Kind {
	case hal.OutcomeHandoff:
		l := cfg.Layout()
		log.Info("handoff",
			zap.Uint32("entry", res.Entry),
			zap.Int("warm_boots", res.Resets),
			zap.String("window", humanize.IBytes(uint64(l.InitialStack-l.LoadAddress))))
		fmt.Fprintf(os.Stderr, "\n[program loaded; jump to 0x%08x]\n", res.Entry)
		return nil
	case hal.OutcomeHalt:
		return fmt.Errorf("machine halted: %w", res.Err)
	default:
		log.Info("power off", zap.Stringer("outcome", res.Kind), zap.Int("warm_boots", res.Resets))
		return nil
	}
}
