package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdmenu/menu/nav"
)

func pad(s string, w int) string {
	return s + strings.Repeat(" ", w-len(s))
}

func TestKeyLayoutThree(t *testing.T) {
	got := []byte{Key('A', 0, 3), Key('A', 1, 3), Key('A', 2, 3)}
	if string(got) != "ACB" {
		t.Fatalf("keys for n=3 = %q; want %q", got, "ACB")
	}
}

func TestKeyIndexBijection(t *testing.T) {
	for n := 1; n <= nav.MaxFiles; n++ {
		seen := map[byte]bool{}
		for i := 0; i < n; i++ {
			k := Key('A', i, n)
			require.False(t, seen[k], "duplicate key %c for n=%d", k, n)
			seen[k] = true
			require.GreaterOrEqual(t, k, byte('A'))
			require.Less(t, k, byte('A'+n))

			j, ok := Index('A', k, n)
			require.True(t, ok)
			require.Equal(t, i, j, "Index(Key(%d)) for n=%d", i, n)
		}
		_, ok := Index('A', byte('A'+n), n)
		assert.False(t, ok, "key past the end for n=%d", n)
	}
	_, ok := Index('0', '/', 3)
	assert.False(t, ok)
}

func TestFriendlySize(t *testing.T) {
	cases := []struct {
		v    uint32
		want string
	}{
		{0, "0B"},
		{321, "321B"},
		{999, "999B"},
		{1000, "1.0K"},
		{1024, "1.0K"},
		{4300, "4.2K"},
		{10188, "9.9K"},
		{10189, "10K"},
		{43008, "42K"},
		{1048576, "1.0M"},
		{44040192, "42M"},
		{3328599654, "3.1G"},
		{^uint32(0), "4.0G"},
	}
	for _, tc := range cases {
		if got := FriendlySize(tc.v); got != tc.want {
			t.Fatalf("FriendlySize(%d) = %q; want %q", tc.v, got, tc.want)
		}
	}
}

func TestUptimeAndMem(t *testing.T) {
	assert.Equal(t, "00:00", Uptime(0, 100))
	assert.Equal(t, "01:05", Uptime(6599, 100))
	assert.Equal(t, "120:00", Uptime(720000, 100))
	assert.Equal(t, "1023K", MemString(0xFFC00))
	assert.Equal(t, "1K", MemString(1))
}

func TestMenu(t *testing.T) {
	st := nav.MenuState{
		Files: []nav.Entry{
			{Name: "alpha.bin", Size: 2048, Kind: nav.KindFile},
			{Name: "beta.bin", Size: 100, Kind: nav.KindFile},
			{Name: "gamma.txt", Size: 5000, Kind: nav.KindFile},
		},
		Dirs: []nav.Entry{{Name: "..", Kind: nav.KindDir}},
	}
	var b strings.Builder
	Menu(&b, st, Header{Dir: "/games", Mem: "1023K", Uptime: "00:42"})

	want := "\nDir: " + pad("/games", 34) + " <Mem 1023K  Uptime 00:42>\n" +
		"[2.0K] A - " + pad("alpha.bin", 28) + "  " + "[100B] C - " + pad("beta.bin", 28) + "\n" +
		"[4.9K] B - " + pad("gamma.txt", 28) + "  " + "<Dir>  0 = " + pad("..", 28) + "\n"
	assert.Equal(t, want, b.String())

	b.Reset()
	Prompt(&b, st)
	assert.Equal(t, "\nPress A-C to run, 0-0 for dir, RETURN for prompt, SPACE to reload:", b.String())
}

func TestMenuOddTail(t *testing.T) {
	st := nav.MenuState{Dirs: []nav.Entry{{Name: "x", Kind: nav.KindDir}}}
	var b strings.Builder
	Menu(&b, st, Header{Dir: "/"})
	// A lone left-column entry keeps its column gap before the newline.
	assert.True(t, strings.HasSuffix(b.String(), "<Dir>  0 = "+pad("x", 28)+"  \n"), b.String())

	b.Reset()
	Prompt(&b, nav.MenuState{})
	assert.Equal(t, "\nPress RETURN for prompt, SPACE to reload:", b.String())
}
