package loader

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdmenu/hal"
	"sdmenu/menu/bootctl"
	"sdmenu/menu/fileop"
	"sdmenu/menu/nav"
	"sdmenu/storage"
)

type stepClock struct{ now uint64 }

func (c *stepClock) Now() uint64      { c.now += 3; return c.now }
func (c *stepClock) WaitEdge() uint64 { c.now++; return c.now }
func (c *stepClock) Hz() int          { return 100 }

type countLED struct{ high, low int }

func (l *countLED) High() { l.high++ }
func (l *countLED) Low()  { l.low++ }

var layout = hal.Layout{LoadAddress: 0x400, InitialStack: 0x2400, MemTop: 0x2800}

const window = 0x2000

type rig struct {
	m   *hal.SimMachine
	v   *storage.MemVolume
	out *strings.Builder
	l   *Loader
	led *countLED
}

func newRig(t *testing.T, opts ...Option) *rig {
	t.Helper()
	m, err := hal.NewSimMachine(layout, int(layout.MemTop), 0x0100)
	require.NoError(t, err)
	v := storage.NewMemVolume()
	require.NoError(t, v.Init())
	r := &rig{m: m, v: v, out: &strings.Builder{}, led: &countLED{}}
	opts = append([]Option{WithLED(r.led)}, opts...)
	r.l = New(nav.NewSession(v), m, r.out, &stepClock{}, bootctl.New(m, r.out), opts...)
	return r
}

// run calls LoadAndRun and returns the handoff entry, if any.
func (r *rig) run(t *testing.T, name string, suppress bool) (entry uint32, jumped bool, err error) {
	t.Helper()
	defer func() {
		if v := recover(); v != nil {
			sig, ok := v.(hal.HandoffSignal)
			require.True(t, ok, "recovered %v", v)
			entry, jumped = sig.Entry, true
		}
	}()
	err = r.l.LoadAndRun(name, suppress)
	return
}

func image(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*31 + 7)
	}
	return b
}

func TestLoadExactWindow(t *testing.T) {
	r := newRig(t, WithCRC(true))
	img := image(window)
	r.v.AddFile("/prog.bin", img)

	entry, jumped, err := r.run(t, "prog.bin", true)
	require.NoError(t, err)
	require.True(t, jumped)
	assert.Equal(t, layout.LoadAddress, entry)
	assert.Equal(t, img, r.m.RAM()[layout.LoadAddress:layout.InitialStack])
	assert.True(t, bootctl.New(r.m, r.out).Marked())

	out := r.out.String()
	assert.True(t, strings.HasPrefix(out, `Loading "/prog.bin"`+strings.Repeat(".", 2)+"\nLoaded 8192 bytes in 0.03 sec.; "), out)
	assert.Contains(t, out, fmt.Sprintf("CRC-32=0x%08X; ", crc32.ChecksumIEEE(img)))
	assert.True(t, strings.HasSuffix(out, "Starting...\n\n"))
	assert.Equal(t, r.led.high+1, r.led.low, "LED left off")
}

func TestLoadTooLarge(t *testing.T) {
	r := newRig(t)
	r.v.AddFile("/big.bin", image(window+1))

	_, jumped, err := r.run(t, "big.bin", true)
	require.False(t, jumped)
	var tl *ImageTooLargeError
	require.True(t, errors.As(err, &tl), "err = %v", err)
	assert.Equal(t, uint32(window), tl.Offset)
	assert.Empty(t, r.m.Jumps())
	assert.False(t, bootctl.New(r.m, r.out).Marked())
	assert.Contains(t, r.out.String(), "\n*** Too large error at offset 8192 (0x00002000)\n")
}

func TestLoadReadError(t *testing.T) {
	r := newRig(t)
	r.v.AddFile("/bad.bin", image(4096))
	require.NoError(t, r.v.FailReadAt("/bad.bin", 1536))

	_, jumped, err := r.run(t, "bad.bin", false)
	require.False(t, jumped)
	var re *fileop.ReadError
	require.True(t, errors.As(err, &re), "err = %v", err)
	assert.Equal(t, uint32(1536), re.Offset)
	assert.Contains(t, r.out.String(), "\n*** Read error at offset 1536 (0x00000600)\n")
}

func TestLoadOpenFailure(t *testing.T) {
	r := newRig(t)
	_, jumped, err := r.run(t, "none.bin", false)
	require.False(t, jumped)
	require.ErrorIs(t, err, fileop.ErrFileOpen)
	assert.Equal(t, `Loading "/none.bin"...open failed!`+"\n\n", r.out.String())
}

func TestLoadShortImage(t *testing.T) {
	r := newRig(t)
	img := image(700)
	r.v.AddFile("/SMALL.BI ", img)

	_, jumped, err := r.run(t, "small.bi", false)
	require.NoError(t, err)
	require.True(t, jumped)
	assert.True(t, bytes.Equal(img, r.m.RAM()[layout.LoadAddress:layout.LoadAddress+700]))
	assert.False(t, bootctl.New(r.m, r.out).Marked())
	assert.NotContains(t, r.out.String(), "CRC-32")
}

// stallVolume serves files that return (0, nil) forever once their data is
// used up instead of io.EOF.
type stallVolume struct{ *storage.MemVolume }

func (v stallVolume) Open(path string) (storage.File, error) {
	f, err := v.MemVolume.Open(path)
	if err != nil {
		return nil, err
	}
	return &stallFile{File: f}, nil
}

type stallFile struct{ storage.File }

func (f *stallFile) Read(p []byte) (int, error) {
	n, err := f.File.Read(p)
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}

func TestLoadStalledReadAtWindowEnd(t *testing.T) {
	m, err := hal.NewSimMachine(layout, int(layout.MemTop), 0x0100)
	require.NoError(t, err)
	mem := storage.NewMemVolume()
	mem.AddFile("/full.bin", image(window))
	require.NoError(t, mem.Init())
	var out strings.Builder
	l := New(nav.NewSession(stallVolume{mem}), m, &out, &stepClock{}, bootctl.New(m, &out))

	err = l.LoadAndRun("full.bin", false)
	var re *fileop.ReadError
	require.True(t, errors.As(err, &re), "err = %v", err)
	require.ErrorIs(t, err, io.ErrNoProgress)
	assert.Equal(t, uint32(window), re.Offset)
	assert.Empty(t, m.Jumps())
	assert.Contains(t, out.String(), "\n*** Read error at offset 8192 (0x00002000)\n")
}
