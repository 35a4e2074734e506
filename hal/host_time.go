//go:build !tinygo

package hal

import (
	"context"
	"time"
)

type hostTime struct {
	hz  int
	ch  chan uint64
	seq uint64
}

func newHostTime(hz int) *hostTime {
	if hz <= 0 {
		hz = 100
	}
	return &hostTime{hz: hz, ch: make(chan uint64, 1024)}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }
func (t *hostTime) Hz() int              { return t.hz }

// run emits ticks at hz until ctx ends.
func (t *hostTime) run(ctx context.Context) error {
	tk := time.NewTicker(time.Second / time.Duration(t.hz))
	defer tk.Stop()

	last := time.Now()
	var acc time.Duration
	tickDur := time.Second / time.Duration(t.hz)
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-tk.C:
			// Catch up on ticks the runtime coalesced.
			acc += now.Sub(last)
			last = now
			n := uint64(acc / tickDur)
			acc %= tickDur
			t.stepN(n)
		}
	}
}

func (t *hostTime) stepN(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}
