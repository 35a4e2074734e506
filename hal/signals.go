package hal

import "fmt"

// The machine operations that never return unwind the calling goroutine with
// one of these values. Only the boot runner recovers them.

// ResetSignal is raised by Machine.WarmBoot.
type ResetSignal struct{}

func (ResetSignal) String() string { return "warm boot" }

// HandoffSignal is raised by Machine.Jump.
type HandoffSignal struct {
	Entry uint32
}

func (s HandoffSignal) String() string { return fmt.Sprintf("jump to 0x%08x", s.Entry) }

// PowerOffSignal is raised by Machine.PowerOff.
type PowerOffSignal struct{}

func (PowerOffSignal) String() string { return "power off" }

// HaltSignal is raised by Machine.Halt.
type HaltSignal struct {
	Err error
}

func (s HaltSignal) String() string { return fmt.Sprintf("halted: %v", s.Err) }

// IsSignal reports whether a recovered panic value is a machine signal.
func IsSignal(v any) bool {
	switch v.(type) {
	case ResetSignal, HandoffSignal, PowerOffSignal, HaltSignal:
		return true
	}
	return false
}
