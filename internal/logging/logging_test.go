package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type lines struct {
	got []string
}

func (l *lines) WriteLineString(s string) { l.got = append(l.got, s) }
func (l *lines) WriteLineBytes(b []byte)  { l.got = append(l.got, string(b)) }

func TestNewHAL(t *testing.T) {
	var sink lines
	log := NewHAL(&sink, zapcore.InfoLevel)
	log.Debug("hidden")
	log.Named("loader").Info("loaded", zap.Int("bytes", 512))

	require.Len(t, sink.got, 1)
	line := sink.got[0]
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "loader")
	assert.Contains(t, line, `"bytes": 512`)
	assert.False(t, strings.HasSuffix(line, "\n"))
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdmenu.log")
	log, err := New(zapcore.DebugLevel, path)
	require.NoError(t, err)
	log.Debug("boot", zap.String("stage", "menu"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "boot")
}
