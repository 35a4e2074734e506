package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdmenu/hal"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sdmenu.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(RootEnv, "")
	cfg, err := Load("")
	require.NoError(t, err)

	want := hal.Layout{LoadAddress: 0x40000, InitialStack: 0xFFC00, MemTop: 0x100000}
	if diff := cmp.Diff(want, cfg.Layout()); diff != "" {
		t.Fatalf("Layout() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, uint32(0x400), cfg.Layout().Reserved())
	assert.True(t, cfg.Loader.CRC)
	assert.Equal(t, "sdcard", cfg.Storage.Root)
	assert.Empty(t, cfg.LoadPath)
}

func TestLoadFile(t *testing.T) {
	t.Setenv(RootEnv, "")
	path := writeConfig(t, `
[machine]
ram_size = "512KiB"
load_address = 0x1000
initial_stack = 0x7F000

[storage]
root = "/srv/card"

[loader]
crc = false

[log]
level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, hal.Layout{LoadAddress: 0x1000, InitialStack: 0x7F000, MemTop: 0x80000}, cfg.Layout())
	assert.Equal(t, "/srv/card", cfg.Storage.Root)
	assert.False(t, cfg.Loader.CRC)
	assert.Equal(t, 100, cfg.Machine.TickHz)
	assert.Equal(t, path, cfg.LoadPath)
}

func TestLoadEnvOverridesRoot(t *testing.T) {
	t.Setenv(RootEnv, "/mnt/sd")
	cfg, err := Load(writeConfig(t, "[storage]\nroot = \"elsewhere\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "/mnt/sd", cfg.Storage.Root)
}

func TestLoadRejects(t *testing.T) {
	t.Setenv(RootEnv, "")
	cases := map[string]string{
		"unknown key":     "[machine]\nram = 1\n",
		"bad size":        "[machine]\nram_size = \"lots\"\n",
		"stack past ram":  "[machine]\nram_size = \"64KiB\"\n",
		"load over stack": "[machine]\nload_address = 0xFFFFF\n",
		"zero hz":         "[machine]\ntick_hz = 0\n",
		"bad level":       "[log]\nlevel = \"chatty\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}
