// Package app is the SD card menu firmware: the boot stage, the menu loop
// and the fault trap, wired to a HAL.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"sdmenu/hal"
	"sdmenu/kernel"
	"sdmenu/menu"
	"sdmenu/menu/bootctl"
	"sdmenu/menu/console"
	"sdmenu/menu/fileop"
	"sdmenu/menu/loader"
	"sdmenu/menu/nav"
)

// Name is shown in the start banner.
const Name = "sdmenu"

// ErrNoStorage halts the machine when the firmware has no storage driver and
// a warm boot did not change that.
var ErrNoStorage = errors.New("no SD card support in firmware")

type Config struct {
	// CRC enables the CRC-32 of loaded images.
	CRC bool
	Log *zap.Logger
}

// Firmware lives from power-on to handoff. Boot runs once per start and
// rebuilds the current dir and the SD boot toggle each time, while the tick
// counter keeps running.
type Firmware struct {
	cfg Config
	log *zap.Logger
	tb  *kernel.Timebase

	unsupported bool
}

// New starts the tick counter and installs the fault trap. The counter
// follows the HAL until ctx ends.
func New(ctx context.Context, h hal.HAL, cfg Config) *Firmware {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	f := &Firmware{cfg: cfg, log: log}

	hz := kernel.DefaultHz
	var ticks <-chan uint64
	if ht := h.Time(); ht != nil {
		hz = ht.Hz()
		ticks = ht.Ticks()
	}
	f.tb = kernel.NewTimebase(hz)
	if ticks != nil {
		go func() { _ = f.tb.Follow(ctx, ticks) }()
	} else {
		// No timer: loads are not timed.
		f.tb.Stop()
	}

	installTrapHandler(h, log)
	return f
}

// Timebase returns the machine tick counter.
func (f *Firmware) Timebase() *kernel.Timebase { return f.tb }

// Boot is the boot stage entry, run on power-on and after every warm boot.
// A pending suppression signature is consumed and turns this start into the
// upload wait; otherwise the menu runs. It never returns normally.
func (f *Firmware) Boot(h hal.HAL) {
	defer func() {
		if r := recover(); r != nil {
			if hal.IsSignal(r) {
				panic(r)
			}
			kernel.Trap(r)
			h.Machine().Halt(fmt.Errorf("fault: %v", r))
		}
	}()

	m := h.Machine()
	if f.unsupported {
		m.Halt(ErrNoStorage)
	}
	con := console.New(h.Serial(), m)
	boot := bootctl.New(m, con)
	if boot.Consume() {
		f.log.Info("SD boot suppressed; waiting for upload")
		con.Print("\nSD boot disabled. Waiting for upload, any key to restart: ")
		con.ReadChar()
		con.Print("\n")
		m.WarmBoot()
	}
	f.runMenu(h, con, boot)
}

func (f *Firmware) newEnv(h hal.HAL, con *console.Console, boot *bootctl.Controller) *menu.Env {
	sess := nav.NewSession(h.Volume())
	return &menu.Env{
		Con:   con,
		Sess:  sess,
		Files: fileop.NewProcessor(sess),
		Loader: loader.New(sess, h.Machine(), con, f.tb, boot,
			loader.WithCRC(f.cfg.CRC),
			loader.WithLED(h.LED()),
			loader.WithLogger(f.log.Named("loader"))),
		Boot: boot,
		Log:  f.log,
	}
}
