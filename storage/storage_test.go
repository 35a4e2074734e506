package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listed struct {
	Name string
	Info Info
}

func listAll(t *testing.T, v Volume, path string) []listed {
	t.Helper()
	var out []listed
	require.NoError(t, v.ListDir(path, func(name string, info Info) bool {
		out = append(out, listed{name, info})
		return true
	}))
	return out
}

func TestSplitPath(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"/", nil},
		{"", nil},
		{"/A/B/", []string{"A", "B"}},
		{"/A/./B", []string{"A", "B"}},
		{"/A/B/..", []string{"A"}},
		{"/../..", nil},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, splitPath(tc.in)); diff != "" {
			t.Fatalf("splitPath(%q) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestMemVolumeListing(t *testing.T) {
	v := NewMemVolume()
	v.AddFile("/GAME.BIN", []byte("abc"))
	v.AddDir("/Docs")
	v.AddFile("/Docs/readme.txt", []byte("hello"))
	require.NoError(t, v.Init())

	want := []listed{
		{"GAME.BIN", Info{Type: TypeFile, Size: 3}},
		{"Docs", Info{Type: TypeDir}},
	}
	if diff := cmp.Diff(want, listAll(t, v, "/")); diff != "" {
		t.Fatalf("root listing mismatch (-want +got):\n%s", diff)
	}

	sub := listAll(t, v, "/DOCS/")
	require.Len(t, sub, 3)
	assert.Equal(t, ".", sub[0].Name)
	assert.Equal(t, "..", sub[1].Name)
	assert.Equal(t, listed{"readme.txt", Info{Type: TypeFile, Size: 5}}, sub[2])

	assert.True(t, IsDir(v, "/docs"))
	assert.False(t, IsDir(v, "/game.bin"))
	assert.False(t, IsDir(v, "/missing"))
}

func TestMemVolumeUnavailable(t *testing.T) {
	v := NewMemVolume()
	v.SetPresent(false)
	require.ErrorIs(t, v.Init(), ErrUnavailable)
	_, err := v.Stat("/")
	require.ErrorIs(t, err, ErrUnavailable)

	v.SetPresent(true)
	require.NoError(t, v.Init())

	v.SetSupported(false)
	assert.False(t, v.Supported())
	require.ErrorIs(t, v.Init(), ErrUnavailable)
}

func TestMemVolumeReadFailure(t *testing.T) {
	v := NewMemVolume()
	v.AddFile("/a.bin", make([]byte, 2000))
	require.NoError(t, v.FailReadAt("/A.BIN", 1024))
	require.NoError(t, v.Init())

	f, err := v.Open("/a.bin")
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 512)
	total := 0
	for {
		n, err := f.Read(buf)
		total += n
		if err != nil {
			require.ErrorIs(t, err, ErrMedium)
			break
		}
	}
	assert.Equal(t, 1024, total)
}

func TestMemVolumeOpenErrors(t *testing.T) {
	v := NewMemVolume()
	v.AddDir("/d")
	require.NoError(t, v.Init())

	_, err := v.Open("/d")
	require.ErrorIs(t, err, ErrIsDir)
	_, err = v.Open("/nope.bin")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDirVolume(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "Games"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Games", "Pong.bin"), []byte("pong!"), 0o644))

	v := NewDirVolume(root)
	require.True(t, v.Supported())
	require.NoError(t, v.Init())

	info, err := v.Stat("/GAMES/PONG.BIN")
	require.NoError(t, err)
	assert.Equal(t, Info{Type: TypeFile, Size: 5}, info)

	sub := listAll(t, v, "/games")
	require.Len(t, sub, 3)
	assert.Equal(t, []string{".", ".."}, []string{sub[0].Name, sub[1].Name})
	assert.Equal(t, "Pong.bin", sub[2].Name)

	f, err := v.Open("/games/pong.bin")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "pong!", string(data))

	// Dot-dot segments stop at the volume root.
	info, err = v.Stat("/../../games")
	require.NoError(t, err)
	assert.Equal(t, TypeDir, info.Type)

	err = v.ListDir("/games/pong.bin", func(string, Info) bool { return true })
	require.ErrorIs(t, err, ErrNotDir)
}

func TestDirVolumeMissingRoot(t *testing.T) {
	v := NewDirVolume(filepath.Join(t.TempDir(), "gone"))
	err := v.Init()
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Init() = %v; want ErrUnavailable", err)
	}
	assert.False(t, NewDirVolume("").Supported())
}

func TestTinyFSNil(t *testing.T) {
	v := NewTinyFS(nil)
	assert.False(t, v.Supported())
	require.ErrorIs(t, v.Init(), ErrUnavailable)
}
