package kernel

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultHz is the periodic tick rate of the machine timer.
const DefaultHz = 100

// Timebase is the free-running tick counter fed by the HAL tick source.
type Timebase struct {
	hz    int
	ticks atomic.Uint64

	mu      sync.Mutex
	cond    *sync.Cond
	stopped bool
}

// NewTimebase creates a counter running at hz ticks per second.
func NewTimebase(hz int) *Timebase {
	if hz <= 0 {
		hz = DefaultHz
	}
	tb := &Timebase{hz: hz}
	tb.cond = sync.NewCond(&tb.mu)
	return tb
}

// Hz returns the tick rate.
func (tb *Timebase) Hz() int { return tb.hz }

// Now returns the current tick count.
func (tb *Timebase) Now() uint64 { return tb.ticks.Load() }

// TickTo moves the counter forward to seq. Older sequence numbers are ignored.
func (tb *Timebase) TickTo(seq uint64) {
	for {
		cur := tb.ticks.Load()
		if seq <= cur {
			return
		}
		if tb.ticks.CompareAndSwap(cur, seq) {
			break
		}
	}
	tb.mu.Lock()
	tb.cond.Broadcast()
	tb.mu.Unlock()
}

// Advance adds n ticks.
func (tb *Timebase) Advance(n uint64) {
	tb.TickTo(tb.Now() + n)
}

// Follow feeds the counter from a HAL tick channel until it closes or ctx ends.
func (tb *Timebase) Follow(ctx context.Context, ch <-chan uint64) error {
	defer tb.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case seq, ok := <-ch:
			if !ok {
				return nil
			}
			tb.TickTo(seq)
		}
	}
}

// Stop releases all waiters for good. Later waits return immediately.
func (tb *Timebase) Stop() {
	tb.mu.Lock()
	tb.stopped = true
	tb.cond.Broadcast()
	tb.mu.Unlock()
}

// WaitEdge blocks until the next tick edge and returns the new count.
func (tb *Timebase) WaitEdge() uint64 {
	start := tb.Now()
	tb.mu.Lock()
	for tb.ticks.Load() == start && !tb.stopped {
		tb.cond.Wait()
	}
	tb.mu.Unlock()
	return tb.Now()
}
