// Package logging builds the zap loggers used for diagnostics. The console
// belongs to the operator, so logs go to stderr, a file, or the HAL log port.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sdmenu/hal"
)

// New returns a console-encoded logger writing to file, or stderr if empty.
func New(level zapcore.Level, file string) (*zap.Logger, error) {
	out := "stderr"
	if file != "" {
		out = file
	}
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{out},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}

// NewHAL returns a logger writing one line per entry through l.
func NewHAL(l hal.Logger, level zapcore.Level) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		LevelKey:       "L",
		NameKey:        "N",
		MessageKey:     "M",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeName:     zapcore.FullNameEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(lineWriter{l: l}), level))
}

// lineWriter strips the encoder's trailing newline; the HAL adds its own.
type lineWriter struct {
	l hal.Logger
}

func (w lineWriter) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 && (p[len(p)-1] == '\n' || p[len(p)-1] == '\r') {
		p = p[:len(p)-1]
	}
	w.l.WriteLineBytes(p)
	return n, nil
}
