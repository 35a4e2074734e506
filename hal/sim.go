package hal

import (
	"fmt"
	"sync"
)

// SimMachine is a machine whose RAM is a byte slice. Control transfers are
// raised as signals. RAM survives warm boots because the slice is kept.
type SimMachine struct {
	mu     sync.Mutex
	ram    []byte
	layout Layout
	rev    uint32

	jumps  []uint32
	resets int
}

// NewSimMachine allocates ramSize bytes of RAM for layout.
func NewSimMachine(layout Layout, ramSize int, rev uint32) (*SimMachine, error) {
	if layout.LoadAddress > layout.InitialStack || layout.InitialStack > layout.MemTop {
		return nil, fmt.Errorf("layout: load 0x%x, stack 0x%x, top 0x%x out of order",
			layout.LoadAddress, layout.InitialStack, layout.MemTop)
	}
	if uint64(layout.MemTop) > uint64(ramSize) {
		return nil, fmt.Errorf("layout: top 0x%x beyond %d bytes of RAM", layout.MemTop, ramSize)
	}
	return &SimMachine{ram: make([]byte, ramSize), layout: layout, rev: rev}, nil
}

func (m *SimMachine) RAM() []byte         { return m.ram }
func (m *SimMachine) Layout() Layout      { return m.layout }
func (m *SimMachine) FirmwareRev() uint32 { return m.rev }

func (m *SimMachine) WarmBoot() {
	m.mu.Lock()
	m.resets++
	m.mu.Unlock()
	panic(ResetSignal{})
}

func (m *SimMachine) Jump(addr uint32) {
	m.mu.Lock()
	m.jumps = append(m.jumps, addr)
	m.mu.Unlock()
	panic(HandoffSignal{Entry: addr})
}

func (m *SimMachine) PowerOff() { panic(PowerOffSignal{}) }

func (m *SimMachine) Halt(reason error) { panic(HaltSignal{Err: reason}) }

// Jumps returns the entry points of all handoffs so far.
func (m *SimMachine) Jumps() []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint32(nil), m.jumps...)
}

// Resets returns the number of warm boots so far.
func (m *SimMachine) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}
