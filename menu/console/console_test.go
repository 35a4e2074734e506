package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdmenu/hal"
)

func newTest(t *testing.T, input string) (*Console, *bytes.Buffer, *hal.QueueSerial) {
	t.Helper()
	m, err := hal.NewSimMachine(hal.Layout{LoadAddress: 0, InitialStack: 0x100, MemTop: 0x100}, 0x100, 1)
	require.NoError(t, err)
	var out bytes.Buffer
	q := hal.NewQueueSerial(&out, 1024)
	q.PushString(input)
	return New(q, m), &out, q
}

func TestReadLineEditing(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		echo  string
	}{
		{"plain", "dir\r", "dir", "dir\n"},
		{"backspace", "dix\br\r", "dir", "dix\b \br\n"},
		{"delete", "ab\x7f\r", "a", "ab\b \b\n"},
		{"backspace on empty", "\b\r", "", "\n"},
		{"ctrl-c clears", "abc\x03x\r", "x", "abc\b \b\b \b\b \bx\n"},
		{"ctrl-x clears", "ab\x18\r", "", "ab\b \b\b \b\n"},
		{"controls ignored", "a\x01\tb\r", "ab", "ab\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, out, _ := newTest(t, tc.input)
			got := c.ReadLine()
			if got != tc.want {
				t.Fatalf("ReadLine() = %q; want %q", got, tc.want)
			}
			assert.Equal(t, tc.echo, out.String())
		})
	}
}

func TestReadLineMaxLength(t *testing.T) {
	long := bytes.Repeat([]byte{'x'}, MaxLine+10)
	c, _, _ := newTest(t, string(long)+"\r")
	assert.Len(t, c.ReadLine(), MaxLine)
}

func TestReadCharPowersOffAtEOF(t *testing.T) {
	c, _, q := newTest(t, "k")
	q.Close()
	assert.Equal(t, byte('k'), c.ReadChar())
	assert.PanicsWithValue(t, hal.PowerOffSignal{}, func() { c.ReadChar() })
}

func TestPrintf(t *testing.T) {
	c, out, _ := newTest(t, "")
	c.Printf("%08x|", 0xbeef)
	c.SendChar('!')
	c.Ring()
	assert.Equal(t, "0000beef|!\a", out.String())
}
