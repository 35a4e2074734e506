//go:build !tinygo

package hal

import (
	"sync"

	"go.uber.org/zap"

	"sdmenu/storage"
)

// ConsoleMode selects how the host presents the machine console.
type ConsoleMode uint8

const (
	// ConsoleTerminal puts the controlling terminal in raw mode.
	ConsoleTerminal ConsoleMode = iota
	// ConsoleHeadless reads stdin line-buffered, for pipes and scripts.
	ConsoleHeadless
	// ConsoleWindow opens an ebiten window with a framebuffer terminal.
	ConsoleWindow
)

// HostConfig describes the simulated machine.
type HostConfig struct {
	Mode        ConsoleMode
	Root        string
	RAMSize     int
	Layout      Layout
	Hz          int
	FirmwareRev uint32

	// Log receives HAL diagnostics. Nil means no logging.
	Log *zap.Logger
}

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	t      *hostTime
	serial Serial
	m      *SimMachine
	vol    storage.Volume
}

func newHost(cfg HostConfig, serial Serial) (*hostHAL, error) {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	m, err := NewSimMachine(cfg.Layout, cfg.RAMSize, cfg.FirmwareRev)
	if err != nil {
		return nil, err
	}
	logger := &hostLogger{log: log.Named("hal")}
	return &hostHAL{
		logger: logger,
		led:    &hostLED{log: logger.log},
		kbd:    newHostKeyboard(),
		t:      newHostTime(cfg.Hz),
		serial: serial,
		m:      m,
		vol:    storage.NewDirVolume(cfg.Root),
	}, nil
}

func (h *hostHAL) Logger() Logger         { return h.logger }
func (h *hostHAL) LED() LED               { return h.led }
func (h *hostHAL) Input() Input           { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Time() Time             { return h.t }
func (h *hostHAL) Serial() Serial         { return h.serial }
func (h *hostHAL) Machine() Machine       { return h.m }
func (h *hostHAL) Volume() storage.Volume { return h.vol }

func (h *hostHAL) Display() Display {
	if h.fb == nil {
		return nil
	}
	return hostDisplay{fb: h.fb}
}

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

// hostKeyboard queues window key presses. Without cgo there is no window and
// nothing is ever queued; the console reads stdin instead.
type hostKeyboard struct {
	ch chan KeyEvent
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 64)}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

// hostLogger sends HAL log lines to zap; stdout belongs to the console.
type hostLogger struct {
	log *zap.Logger
}

func (l *hostLogger) WriteLineString(s string) { l.log.Info(s) }

func (l *hostLogger) WriteLineBytes(b []byte) { l.log.Info(string(b)) }

type hostLED struct {
	mu  sync.Mutex
	on  bool
	log *zap.Logger
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = true
	l.log.Debug("led", zap.Bool("on", true))
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = false
	l.log.Debug("led", zap.Bool("on", false))
}
