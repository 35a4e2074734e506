package hal

// OutcomeKind tells how the machine stopped running firmware.
type OutcomeKind uint8

const (
	// OutcomeReturned means the boot stage returned on its own.
	OutcomeReturned OutcomeKind = iota
	OutcomeHandoff
	OutcomePowerOff
	OutcomeHalt
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeHandoff:
		return "handoff"
	case OutcomePowerOff:
		return "power-off"
	case OutcomeHalt:
		return "halt"
	default:
		return "returned"
	}
}

// Outcome is the final state of a RunBoot call.
type Outcome struct {
	Kind   OutcomeKind
	Entry  uint32
	Err    error
	Resets int
}

// RunBoot runs the boot stage and restarts it on every warm boot until the
// firmware hands off, powers off or halts. Panics other than machine signals
// are passed on unchanged.
func RunBoot(h HAL, boot func(HAL)) Outcome {
	resets := 0
	for {
		switch s := runStage(h, boot).(type) {
		case ResetSignal:
			resets++
			continue
		case HandoffSignal:
			return Outcome{Kind: OutcomeHandoff, Entry: s.Entry, Resets: resets}
		case PowerOffSignal:
			return Outcome{Kind: OutcomePowerOff, Resets: resets}
		case HaltSignal:
			return Outcome{Kind: OutcomeHalt, Err: s.Err, Resets: resets}
		default:
			return Outcome{Kind: OutcomeReturned, Resets: resets}
		}
	}
}

func runStage(h HAL, boot func(HAL)) (sig any) {
	defer func() {
		if r := recover(); r != nil {
			if !IsSignal(r) {
				panic(r)
			}
			sig = r
		}
	}()
	boot(h)
	return nil
}
