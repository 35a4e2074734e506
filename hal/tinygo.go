//go:build tinygo && baremetal && !picocalc

package hal

import (
	"machine"

	"sdmenu/storage"
)

type tinyGoHAL struct {
	logger *uartLogger
	led    *pinLED
	t      *tinyGoTime
	serial *uartSerial
	m      *tinyGoMachine
	vol    storage.Volume
}

// New returns a Pico 2 (RP2350) HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// SD card: SPI0 on GP18 (SCK) / GP19 (SDO) / GP16 (SDI) / GP17 (CS).
func New() HAL {
	uart := openUART()

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	logger := &uartLogger{uart: uart}
	return &tinyGoHAL{
		logger: logger,
		led:    &pinLED{pin: ledPin},
		t:      newTinyGoTime(100),
		serial: &uartSerial{uart: uart},
		m:      newTinyGoMachine(tinyGoLayout, logger),
		vol: newSDVolume(sdPins{
			spi: machine.SPI0,
			sck: machine.GP18, sdo: machine.GP19, sdi: machine.GP16, cs: machine.GP17,
		}),
	}
}

func (h *tinyGoHAL) Logger() Logger         { return h.logger }
func (h *tinyGoHAL) LED() LED               { return h.led }
func (h *tinyGoHAL) Display() Display       { return nil }
func (h *tinyGoHAL) Input() Input           { return nil }
func (h *tinyGoHAL) Time() Time             { return h.t }
func (h *tinyGoHAL) Serial() Serial         { return h.serial }
func (h *tinyGoHAL) Machine() Machine       { return h.m }
func (h *tinyGoHAL) Volume() storage.Volume { return h.vol }
