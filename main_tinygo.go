//go:build tinygo

package main

import (
	"context"

	"go.uber.org/zap/zapcore"

	"sdmenu/app"
	"sdmenu/hal"
	"sdmenu/internal/logging"
)

func main() {
	h := hal.New()
	log := logging.NewHAL(h.Logger(), zapcore.InfoLevel)
	fw := app.New(context.Background(), h, app.Config{CRC: true, Log: log})

	// Warm boots reset the CPU here, so the runner only ever sees the
	// first start.
	out := hal.RunBoot(h, fw.Boot)
	h.Machine().Halt(out.Err)
}
