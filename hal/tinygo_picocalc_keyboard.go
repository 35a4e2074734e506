//go:build tinygo && baremetal && picocalc

package hal

import (
	"errors"
	"machine"
	"time"
)

// The keyboard controller answers on I2C. Reading its FIFO register pops one
// (state, code) pair; an empty FIFO reads as zeros.
const (
	kbdAddr    uint16 = 0x1F
	kbdRegFIFO byte   = 0x09
	kbdPollGap        = 2 * time.Millisecond
)

const (
	kbdPressed  byte = 1
	kbdHeld     byte = 2
	kbdReleased byte = 3
)

// Controller codes above ASCII, plus backspace.
const (
	kcBackspace byte = 0x08
	kcAlt       byte = 0xA1
	kcCtrl      byte = 0xA5
	kcEsc       byte = 0xB1
	kcIns       byte = 0xD1
	kcDel       byte = 0xD4
)

type picoCalcKeyboard struct {
	bus  *machine.I2C
	ch   chan KeyEvent
	cmd  [1]byte
	resp [2]byte
	ctrl bool
}

func newPicoCalcKeyboard() (*picoCalcKeyboard, error) {
	bus, err := openKeyboardBus()
	if err != nil {
		return nil, err
	}
	k := &picoCalcKeyboard{bus: bus, ch: make(chan KeyEvent, 64), cmd: [1]byte{kbdRegFIFO}}
	go k.run()
	return k, nil
}

func (k *picoCalcKeyboard) Events() <-chan KeyEvent { return k.ch }

// openKeyboardBus tries both I2C blocks at two speeds. The keyboard MCU can
// take a while to answer after power-on.
func openKeyboardBus() (*machine.I2C, error) {
	var probe [2]byte
	cmd := []byte{kbdRegFIFO}
	for _, bus := range [...]*machine.I2C{machine.I2C1, machine.I2C0} {
		if bus == nil {
			continue
		}
		for _, hz := range [...]uint32{100_000, 400_000} {
			cfg := machine.I2CConfig{SCL: machine.GP7, SDA: machine.GP6, Frequency: hz}
			if bus.Configure(cfg) != nil {
				continue
			}
			for try := 0; try < 50; try++ {
				if bus.Tx(kbdAddr, cmd, probe[:]) == nil {
					return bus, nil
				}
				time.Sleep(10 * time.Millisecond)
			}
		}
	}
	return nil, errors.New("keyboard: no answer on I2C")
}

// run drains the FIFO and sleeps only when it is empty. Events are dropped
// while the console is not reading.
func (k *picoCalcKeyboard) run() {
	for {
		ev, ok, more := k.next()
		if ok {
			select {
			case k.ch <- ev:
			default:
			}
		}
		if !more {
			time.Sleep(kbdPollGap)
		}
	}
}

// next pops one FIFO entry. Only presses reach the console; Ctrl is tracked
// across press, hold and release.
func (k *picoCalcKeyboard) next() (ev KeyEvent, ok, more bool) {
	if k.bus.Tx(kbdAddr, k.cmd[:], k.resp[:]) != nil {
		return KeyEvent{}, false, false
	}
	state, code := k.resp[0], k.resp[1]
	if state == 0 && code == 0 {
		return KeyEvent{}, false, false
	}
	if code == kcCtrl {
		k.ctrl = state == kbdPressed || state == kbdHeld
		return KeyEvent{}, false, true
	}
	if state != kbdPressed {
		return KeyEvent{}, false, true
	}
	ev, ok = k.decode(code)
	return ev, ok, true
}

func (k *picoCalcKeyboard) decode(code byte) (KeyEvent, bool) {
	switch code {
	case '\r', '\n':
		return KeyEvent{Press: true, Code: KeyEnter}, true
	case kcBackspace:
		return KeyEvent{Press: true, Code: KeyBackspace}, true
	case kcEsc:
		return KeyEvent{Press: true, Code: KeyEscape}, true
	case kcDel:
		return KeyEvent{Press: true, Code: KeyDelete}, true
	case kcIns:
		return KeyEvent{Press: true, Code: KeyTab}, true
	case 0, kcAlt:
		return KeyEvent{}, false
	}
	// Cursor and function keys mean nothing at the menu.
	if code >= 0x80 {
		return KeyEvent{}, false
	}
	r := rune(code)
	if k.ctrl {
		if lower := r | 0x20; lower >= 'a' && lower <= 'z' {
			r = lower - 'a' + 1
		}
	}
	return KeyEvent{Press: true, Rune: r}, true
}
