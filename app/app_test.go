package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdmenu/hal"
	"sdmenu/menu/bootctl"
	"sdmenu/storage"
)

var testLayout = hal.Layout{LoadAddress: 0x400, InitialStack: 0xFC00, MemTop: 0x10000}

type testHAL struct {
	out    *strings.Builder
	serial *hal.QueueSerial
	m      *hal.SimMachine
	vol    storage.Volume
}

func (h *testHAL) Logger() hal.Logger     { return nil }
func (h *testHAL) LED() hal.LED           { return nil }
func (h *testHAL) Display() hal.Display   { return nil }
func (h *testHAL) Input() hal.Input       { return nil }
func (h *testHAL) Serial() hal.Serial     { return h.serial }
func (h *testHAL) Time() hal.Time         { return nil }
func (h *testHAL) Machine() hal.Machine   { return h.m }
func (h *testHAL) Volume() storage.Volume { return h.vol }

func newTestHAL(t *testing.T, vol storage.Volume, input string) *testHAL {
	t.Helper()
	m, err := hal.NewSimMachine(testLayout, int(testLayout.MemTop), 0x0102)
	require.NoError(t, err)
	out := &strings.Builder{}
	s := hal.NewQueueSerial(out, len(input)+1)
	s.PushString(input)
	s.Close()
	return &testHAL{out: out, serial: s, m: m, vol: vol}
}

func boot(t *testing.T, h *testHAL) hal.Outcome {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw := New(ctx, h, Config{CRC: true})
	return hal.RunBoot(h, fw.Boot)
}

func sampleVolume() *storage.MemVolume {
	v := storage.NewMemVolume()
	v.AddFile("/hello.bin", []byte{0x60, 0xfe})
	v.AddFile("/readme.txt", []byte("hi\n"))
	v.AddDir("/games")
	v.AddFile("/games/pong.bin", []byte{1})
	return v
}

func TestMenuRunsImage(t *testing.T) {
	h := newTestHAL(t, sampleVolume(), "a")
	out := boot(t, h)

	require.Equal(t, hal.OutcomeHandoff, out.Kind, h.out.String())
	assert.Equal(t, testLayout.LoadAddress, out.Entry)
	assert.Equal(t, []byte{0x60, 0xfe}, h.m.RAM()[0x400:0x402])

	s := h.out.String()
	assert.True(t, strings.HasPrefix(s, "\nsdmenu [FW:1.02]: SD Card Menu\n"), s)
	assert.Contains(t, s, "<Mem 63K    Uptime 00:00>\n")
	assert.Contains(t, s, "[  2B] A - hello.bin")
	assert.Contains(t, s, "[  3B] B - readme.txt")
	assert.Contains(t, s, "<Dir>  0 = games")
	assert.Contains(t, s, "\nPress A-B to run, 0-0 for dir, RETURN for prompt, SPACE to reload:A\n")
	assert.Contains(t, s, "Loading \"/hello.bin\"\nLoaded 2 bytes in 0.00 sec.; CRC-32=0x")
	assert.False(t, bootctl.New(h.m, h.out).Marked())
}

func TestToggleWritesSignatureBeforeHandoff(t *testing.T) {
	h := newTestHAL(t, sampleVolume(), ".a")
	out := boot(t, h)
	require.Equal(t, hal.OutcomeHandoff, out.Kind)
	assert.Contains(t, h.out.String(), "no boot\n")
	assert.True(t, bootctl.New(h.m, h.out).Marked())
}

func TestUploadWaitsAfterWarmBoot(t *testing.T) {
	h := newTestHAL(t, sampleVolume(), "/k")
	out := boot(t, h)

	assert.Equal(t, hal.OutcomePowerOff, out.Kind)
	assert.Equal(t, 2, out.Resets)
	s := h.out.String()
	assert.Contains(t, s, "upload\n\nMenu exit.  -= DON'T PANIC =-")
	assert.Contains(t, s, "SD boot disabled. Waiting for upload, any key to restart: \n")
	assert.False(t, bootctl.New(h.m, h.out).Marked(), "signature consumed")
	assert.Equal(t, 2, strings.Count(s, "SD Card Menu"), "menu after upload wait")
}

func TestDirectoryKeyAndBell(t *testing.T) {
	h := newTestHAL(t, sampleVolume(), "90 #")
	out := boot(t, h)

	assert.Equal(t, hal.OutcomePowerOff, out.Kind)
	s := h.out.String()
	assert.Contains(t, s, "for dir, RETURN for prompt, SPACE to reload:\a0\n")
	assert.Contains(t, s, "\nDir: /games ")
	assert.Contains(t, s, "<Dir>  0 = ..")
	assert.Contains(t, s, "reload\n")
	assert.Contains(t, s, "reload:exit\n\nMenu exit.")
}

func TestTextFileIsTyped(t *testing.T) {
	h := newTestHAL(t, sampleVolume(), "bq")
	out := boot(t, h)

	assert.Equal(t, hal.OutcomePowerOff, out.Kind)
	assert.Contains(t, h.out.String(), "B\n\n\"/readme.txt\":\nhi\n\nPress any key:\n")
	assert.Empty(t, h.m.Jumps())
}

func TestEmptyVolumeDropsToShell(t *testing.T) {
	h := newTestHAL(t, storage.NewMemVolume(), "dir\rx\r")
	out := boot(t, h)

	assert.Equal(t, hal.OutcomePowerOff, out.Kind)
	s := h.out.String()
	assert.Contains(t, s, "\nNo menu files present.\n\nSD Card nano-shell prompt (built ")
	assert.Contains(t, s, "/> dir\nDirectory: /\n\n0 files, 0 dirs, total size 0 bytes (0B)\n")
	assert.Contains(t, s, "Exit to menu.\n")
}

func TestNoStorageSupport(t *testing.T) {
	v := storage.NewMemVolume()
	v.SetSupported(false)
	h := newTestHAL(t, v, "")
	out := boot(t, h)

	assert.Equal(t, hal.OutcomeHalt, out.Kind)
	assert.True(t, errors.Is(out.Err, ErrNoStorage), "err = %v", out.Err)
	assert.Contains(t, h.out.String(), "*** This program requires SD card support in firmware.\n")
}

func TestCardMissing(t *testing.T) {
	v := sampleVolume()
	v.SetPresent(false)
	h := newTestHAL(t, v, " q")
	out := boot(t, h)

	assert.Equal(t, hal.OutcomePowerOff, out.Kind)
	assert.Equal(t, 1, out.Resets)
	s := h.out.String()
	assert.Contains(t, s, "\nNo SD card detected. SPACE to retry, other key to warm-boot: retry\n")
	assert.Contains(t, s, "warm-boot: exit\n\nMenu exit.")
}

type faultyVolume struct{ *storage.MemVolume }

func (faultyVolume) ListDir(string, func(string, storage.Info) bool) error {
	panic("boom")
}

func TestFaultHalts(t *testing.T) {
	h := newTestHAL(t, faultyVolume{sampleVolume()}, "")
	out := boot(t, h)

	assert.Equal(t, hal.OutcomeHalt, out.Kind)
	require.Error(t, out.Err)
	assert.Contains(t, out.Err.Error(), "boom")
	assert.Contains(t, h.out.String(), "\n*** sdmenu fault: panic: boom\n")
}
