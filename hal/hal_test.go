package hal

import (
	"bytes"
	"errors"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdmenu/storage"
)

var testLayout = Layout{LoadAddress: 0x1000, InitialStack: 0x3C00, MemTop: 0x4000}

func TestLayoutReserved(t *testing.T) {
	if got := testLayout.Reserved(); got != 0x400 {
		t.Fatalf("Reserved() = %#x; want 0x400", got)
	}
	if got := (Layout{InitialStack: 0x100, MemTop: 0x100}).Reserved(); got != 0 {
		t.Fatalf("Reserved() = %#x; want 0", got)
	}
}

func TestNewSimMachineValidates(t *testing.T) {
	_, err := NewSimMachine(testLayout, 0x1000, 1)
	require.Error(t, err)
	_, err = NewSimMachine(Layout{LoadAddress: 0x2000, InitialStack: 0x1000, MemTop: 0x4000}, 0x4000, 1)
	require.Error(t, err)

	m, err := NewSimMachine(testLayout, 0x4000, 7)
	require.NoError(t, err)
	assert.Len(t, m.RAM(), 0x4000)
	assert.Equal(t, uint32(7), m.FirmwareRev())
}

func TestQueueSerial(t *testing.T) {
	var out bytes.Buffer
	q := NewQueueSerial(&out, 8)
	q.PushString("ab")
	q.Close()
	assert.False(t, q.Push('c'))

	buf := make([]byte, 4)
	n, err := q.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(buf[:n]))

	_, err = q.Read(buf)
	require.ErrorIs(t, err, io.EOF)

	_, err = q.Write([]byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "hi", out.String())
}

func TestRGB565(t *testing.T) {
	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	assert.Equal(t, rgb565{0xFF, 0xFF}, toRGB565(white))
	assert.Equal(t, white, toRGB565(white).RGBA())
	assert.Equal(t, rgb565{0x00, 0xF8}, toRGB565(color.RGBA{R: 0xFF}))
	assert.Equal(t, color.RGBA{G: 0xFF, A: 0xFF}, rgb565{0xE0, 0x07}.RGBA())

	buf := make([]byte, 5)
	fillRGB565(buf, color.RGBA{B: 0xFF})
	assert.Equal(t, []byte{0x1F, 0x00, 0x1F, 0x00, 0x00}, buf)
}

func TestKeyByte(t *testing.T) {
	cases := []struct {
		ev   KeyEvent
		want byte
		ok   bool
	}{
		{KeyEvent{Code: KeyEnter, Press: true}, '\r', true},
		{KeyEvent{Code: KeyBackspace, Press: true}, 0x08, true},
		{KeyEvent{Code: KeyDelete, Press: true}, 0x7f, true},
		{KeyEvent{Rune: 'a', Press: true}, 'a', true},
		{KeyEvent{Rune: 0x01, Press: true}, 0x01, true},
		{KeyEvent{Rune: 'é', Press: true}, 0, false},
		{KeyEvent{Rune: 'a'}, 0, false},
	}
	for _, tc := range cases {
		got, ok := KeyByte(tc.ev)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("KeyByte(%+v) = %#x, %v; want %#x, %v", tc.ev, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFeedKeysCtrlDCloses(t *testing.T) {
	q := NewQueueSerial(nil, 8)
	ch := make(chan KeyEvent, 3)
	ch <- KeyEvent{Rune: 'x', Press: true}
	ch <- KeyEvent{Rune: 0x04, Press: true}
	close(ch)
	FeedKeys(ch, q)

	buf := make([]byte, 2)
	n, err := q.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "x", string(buf[:n]))
	_, err = q.Read(buf)
	require.ErrorIs(t, err, io.EOF)
}

type testHAL struct {
	m *SimMachine
}

func (h testHAL) Logger() Logger         { return nil }
func (h testHAL) LED() LED               { return nil }
func (h testHAL) Display() Display       { return nil }
func (h testHAL) Input() Input           { return nil }
func (h testHAL) Serial() Serial         { return nil }
func (h testHAL) Time() Time             { return nil }
func (h testHAL) Machine() Machine       { return h.m }
func (h testHAL) Volume() storage.Volume { return nil }

func TestRunBootKeepsRAMAcrossWarmBoot(t *testing.T) {
	m, err := NewSimMachine(testLayout, 0x4000, 1)
	require.NoError(t, err)

	boots := 0
	out := RunBoot(testHAL{m: m}, func(h HAL) {
		boots++
		ram := h.Machine().RAM()
		if ram[0x3C00] == 0 {
			ram[0x3C00] = 0xB0
			h.Machine().WarmBoot()
		}
		h.Machine().Jump(h.Machine().Layout().LoadAddress)
	})

	assert.Equal(t, 2, boots)
	assert.Equal(t, Outcome{Kind: OutcomeHandoff, Entry: 0x1000, Resets: 1}, out)
	assert.Equal(t, []uint32{0x1000}, m.Jumps())
	assert.Equal(t, 1, m.Resets())
}

func TestRunBootHaltAndPowerOff(t *testing.T) {
	m, err := NewSimMachine(testLayout, 0x4000, 1)
	require.NoError(t, err)
	h := testHAL{m: m}

	fault := errors.New("fault")
	out := RunBoot(h, func(h HAL) { h.Machine().Halt(fault) })
	assert.Equal(t, OutcomeHalt, out.Kind)
	require.ErrorIs(t, out.Err, fault)

	out = RunBoot(h, func(h HAL) { h.Machine().PowerOff() })
	assert.Equal(t, OutcomePowerOff, out.Kind)

	out = RunBoot(h, func(HAL) {})
	assert.Equal(t, OutcomeReturned, out.Kind)
}

func TestRunBootPassesForeignPanics(t *testing.T) {
	m, err := NewSimMachine(testLayout, 0x4000, 1)
	require.NoError(t, err)
	assert.PanicsWithValue(t, "boom", func() {
		RunBoot(testHAL{m: m}, func(HAL) { panic("boom") })
	})
}
