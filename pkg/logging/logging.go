// Package logging builds the process logger. The terminal belongs to the UI,
// so everything goes to a file.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger at level writing to path
func New(level, path string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}

// BadgerLogger adapts a zap logger to badger.Logger
type BadgerLogger struct {
	*zap.SugaredLogger
}

// Badger returns a badger.Logger that writes through log
func Badger(log *zap.Logger) BadgerLogger {
	return BadgerLogger{log.Named("badger").Sugar()}
}

func (l BadgerLogger) Warningf(format string, args ...any) {
	l.Warnf(format, args...)
}
