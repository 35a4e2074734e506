package kernel

import (
	"sync"
	"sync/atomic"
)

// TrapInfo describes an unrecoverable fault.
type TrapInfo struct {
	Value any
	Stack []byte
}

var (
	trapActive atomic.Bool
	trapOnce   sync.Once

	trapHandler atomic.Value // func(TrapInfo)
)

// InTrap reports whether a fault has been trapped.
func InTrap() bool {
	return trapActive.Load()
}

// SetTrapHandler installs the process-wide fault handler.
//
// The handler runs at most once, on the first fault. It must not panic and
// is expected never to return control to the faulting code.
func SetTrapHandler(fn func(TrapInfo)) {
	trapHandler.Store(fn)
}

// Trap reports a fault to the installed handler. The stack is captured here.
func Trap(v any) {
	trapOnce.Do(func() {
		trapActive.Store(true)
		info := TrapInfo{Value: v, Stack: captureStack()}
		if h := trapHandler.Load(); h != nil {
			if fn, ok := h.(func(TrapInfo)); ok && fn != nil {
				fn(info)
			}
		}
	})
}
