//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

// HostResult is how a host run ended, with the final RAM contents.
type HostResult struct {
	Outcome
	RAM []byte
}

// RunHost powers on the simulated machine and runs boot across warm boots
// until the firmware hands off, powers off or halts.
func RunHost(ctx context.Context, cfg HostConfig, boot func(HAL)) (HostResult, error) {
	if cfg.Mode == ConsoleWindow {
		return runWindow(ctx, cfg, boot)
	}

	con, err := openStdioConsole(os.Stdin, os.Stdout, cfg.Mode)
	if err != nil {
		return HostResult{}, fmt.Errorf("console: %w", err)
	}
	defer con.Stop()

	h, err := newHost(cfg, con)
	if err != nil {
		return HostResult{}, err
	}
	go con.pump()
	return runMachine(ctx, h, boot, con.Stop)
}

// runMachine drives the tick source and the firmware. stop must unblock
// console reads so an interrupted run powers off.
func runMachine(ctx context.Context, h *hostHAL, boot func(HAL), stop func()) (HostResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.t.run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		stop()
		return nil
	})

	var out Outcome
	g.Go(func() error {
		defer cancel()
		out = RunBoot(h, boot)
		return nil
	})
	if err := g.Wait(); err != nil {
		return HostResult{}, err
	}
	return HostResult{Outcome: out, RAM: h.m.RAM()}, nil
}
