// Package logging builds the zap logger shared by every stage of a takeoff run.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format values accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// LevelFromString parses a level name ("debug", "info", "warn", "error").
// An empty string means info.
func LevelFromString(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// New creates a logger writing to stderr.
func New(level, format string) (*zap.Logger, error) {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, level, format string) (*zap.Logger, error) {
	lvl, err := LevelFromString(level)
	if err != nil {
		return nil, err
	}

	enc, err := newEncoder(format)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

func newEncoder(format string) (zapcore.Encoder, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	switch strings.ToLower(format) {
	case "", FormatConsole:
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderCfg), nil
	case FormatJSON:
		return zapcore.NewJSONEncoder(encoderCfg), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: want %q or %q", format, FormatConsole, FormatJSON)
	}
}
