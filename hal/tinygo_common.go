//go:build tinygo && baremetal

package hal

import (
	"errors"
	"machine"
	"time"
)

type tinyGoDisplay struct {
	fb Framebuffer
}

func (d tinyGoDisplay) Framebuffer() Framebuffer { return d.fb }

type tinyGoInput struct {
	kbd Keyboard
}

func (in tinyGoInput) Keyboard() Keyboard { return in.kbd }

type tinyGoTime struct {
	hz  int
	ch  chan uint64
	seq uint64
}

func newTinyGoTime(hz int) *tinyGoTime {
	t := &tinyGoTime{hz: hz, ch: make(chan uint64, 16)}
	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(hz))
		defer ticker.Stop()
		for range ticker.C {
			t.seq++
			select {
			case t.ch <- t.seq:
			default:
			}
		}
	}()
	return t
}

func (t *tinyGoTime) Ticks() <-chan uint64 { return t.ch }
func (t *tinyGoTime) Hz() int              { return t.hz }

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High() { l.pin.High() }
func (l *pinLED) Low()  { l.pin.Low() }

// uartSerial turns the non-blocking UART into a blocking console. Output can
// be mirrored to a second writer such as the LCD terminal.
type uartSerial struct {
	uart   *machine.UART
	mirror interface{ Write([]byte) (int, error) }
	keys   <-chan KeyEvent
}

func (s *uartSerial) Read(p []byte) (int, error) {
	if s.uart == nil {
		return 0, ErrNotImplemented
	}
	if len(p) == 0 {
		return 0, nil
	}
	for {
		if s.uart.Buffered() > 0 {
			return s.uart.Read(p)
		}
		select {
		case ev := <-s.keys:
			if b, ok := KeyByte(ev); ok {
				p[0] = b
				return 1, nil
			}
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func (s *uartSerial) Write(p []byte) (int, error) {
	if s.uart == nil {
		return 0, ErrNotImplemented
	}
	if s.mirror != nil {
		_, _ = s.mirror.Write(p)
	}
	for _, b := range p {
		if b == '\n' {
			s.uart.WriteByte('\r')
		}
		s.uart.WriteByte(b)
	}
	return len(p), nil
}

// tinyGoMachine holds the load window in a Go slice. Warm boot resets the
// CPU, so RAM contents (and the autoboot signature) do not survive it.
type tinyGoMachine struct {
	ram    []byte
	layout Layout
	log    Logger
}

func newTinyGoMachine(layout Layout, log Logger) *tinyGoMachine {
	return &tinyGoMachine{ram: make([]byte, layout.MemTop), layout: layout, log: log}
}

func (m *tinyGoMachine) RAM() []byte         { return m.ram }
func (m *tinyGoMachine) Layout() Layout      { return m.layout }
func (m *tinyGoMachine) FirmwareRev() uint32 { return firmwareRev }

func (m *tinyGoMachine) WarmBoot() {
	machine.CPUReset()
	select {}
}

func (m *tinyGoMachine) Jump(addr uint32) {
	m.Halt(errors.New("no native execution of loaded images on this target"))
}

func (m *tinyGoMachine) PowerOff() { m.Halt(errors.New("power off")) }

func (m *tinyGoMachine) Halt(reason error) {
	if m.log != nil {
		msg := "halt"
		if reason != nil {
			msg += ": " + reason.Error()
		}
		m.log.WriteLineString(msg)
	}
	select {}
}

// firmwareRev is set at build time via -ldflags.
var firmwareRev uint32 = 0x0100

// tinyGoLayout fits the load window into on-chip SRAM.
var tinyGoLayout = Layout{
	LoadAddress:  0x0000,
	InitialStack: 0x1FC00,
	MemTop:       0x20000,
}

type sdPins struct {
	spi               *machine.SPI
	sck, sdo, sdi, cs machine.Pin
}

func openUART() *machine.UART {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	return uart
}
