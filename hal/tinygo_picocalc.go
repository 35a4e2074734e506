//go:build tinygo && baremetal && picocalc

package hal

import (
	"image/color"
	"machine"

	"sdmenu/storage"
)

type picoCalcHAL struct {
	logger *uartLogger
	led    *pinLED
	fb     Framebuffer
	kbd    Keyboard
	t      *tinyGoTime
	serial *uartSerial
	m      *tinyGoMachine
	vol    storage.Volume
}

// New returns a PicoCalc HAL implementation (Pico/Pico2 on the PicoCalc carrier).
//
// The console is the LCD and keyboard, mirrored on UART0 (GP0/GP1, 115200 8N1).
// The SD slot sits on SPI0.
func New() HAL {
	uart := openUART()

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	disp, err := newPicoCalcDisplay()
	if err != nil {
		disp = newPicoCalcDisplayStub()
	}

	var kbd Keyboard
	var keys <-chan KeyEvent
	if kb, err := newPicoCalcKeyboard(); err == nil {
		kbd = kb
		keys = kb.Events()
	}

	logger := &uartLogger{uart: uart}
	return &picoCalcHAL{
		logger: logger,
		led:    &pinLED{pin: ledPin},
		fb:     disp,
		kbd:    kbd,
		t:      newTinyGoTime(100),
		serial: &uartSerial{uart: uart, mirror: NewFramebufferConsole(disp), keys: keys},
		m:      newTinyGoMachine(tinyGoLayout, logger),
		vol: newSDVolume(sdPins{
			spi: machine.SPI0,
			sck: machine.GP18, sdo: machine.GP19, sdi: machine.GP16, cs: machine.GP17,
		}),
	}
}

func (h *picoCalcHAL) Logger() Logger         { return h.logger }
func (h *picoCalcHAL) LED() LED               { return h.led }
func (h *picoCalcHAL) Display() Display       { return tinyGoDisplay{fb: h.fb} }
func (h *picoCalcHAL) Input() Input           { return tinyGoInput{kbd: h.kbd} }
func (h *picoCalcHAL) Time() Time             { return h.t }
func (h *picoCalcHAL) Serial() Serial         { return h.serial }
func (h *picoCalcHAL) Machine() Machine       { return h.m }
func (h *picoCalcHAL) Volume() storage.Volume { return h.vol }

type picoCalcFramebuffer struct {
	w      int
	h      int
	stride int
	buf    []byte

	lcd *lcdPanel
}

func (f *picoCalcFramebuffer) Width() int          { return f.w }
func (f *picoCalcFramebuffer) Height() int         { return f.h }
func (f *picoCalcFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *picoCalcFramebuffer) StrideBytes() int    { return f.stride }
func (f *picoCalcFramebuffer) Buffer() []byte      { return f.buf }

func (f *picoCalcFramebuffer) ClearRGB(r, g, b uint8) {
	fillRGB565(f.buf, color.RGBA{R: r, G: g, B: b, A: 0xFF})
}

func (f *picoCalcFramebuffer) Present() error {
	if f.lcd == nil {
		return ErrNotImplemented
	}
	return f.lcd.present(f.buf, f.w, f.h)
}

func newPicoCalcDisplay() (*picoCalcFramebuffer, error) {
	const w = 320
	const h = 320
	lcd, err := openLCDPanel(h)
	if err != nil {
		return nil, err
	}
	return &picoCalcFramebuffer{
		w:      w,
		h:      h,
		stride: w * 2,
		buf:    make([]byte, w*h*2),
		lcd:    lcd,
	}, nil
}

func newPicoCalcDisplayStub() *picoCalcFramebuffer {
	const w = 320
	const h = 320
	return &picoCalcFramebuffer{
		w:      w,
		h:      h,
		stride: w * 2,
		buf:    make([]byte, w*h*2),
	}
}
