// Package logger provides the zerolog-backed Logger implementation for librakeep
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/librakeep/librakeep/pkg/interfaces"
)

// ZerologLogger wraps a zerolog.Logger behind the interfaces.Logger contract
type ZerologLogger struct {
	zl zerolog.Logger
}

// New creates a logger writing JSON to w at the given level
func New(w io.Writer, level string) interfaces.Logger {
	zl := zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
	return &ZerologLogger{zl: zl}
}

// NewConsoleLogger creates a human-readable logger on stderr
func NewConsoleLogger(level string) interfaces.Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	zl := zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
	return &ZerologLogger{zl: zl}
}

// NewTestLogger creates a logger for tests, discarding all output
func NewTestLogger() interfaces.Logger {
	return New(io.Discard, "debug")
}

// Debug logs debug level messages
func (l *ZerologLogger) Debug(msg string, fields ...map[string]interface{}) {
	applyFields(l.zl.Debug(), fields).Msg(msg)
}

// Info logs info level messages
func (l *ZerologLogger) Info(msg string, fields ...map[string]interface{}) {
	applyFields(l.zl.Info(), fields).Msg(msg)
}

// Warn logs warning level messages
func (l *ZerologLogger) Warn(msg string, fields ...map[string]interface{}) {
	applyFields(l.zl.Warn(), fields).Msg(msg)
}

// Error logs error level messages
func (l *ZerologLogger) Error(msg string, err error, fields ...map[string]interface{}) {
	applyFields(l.zl.Error().Err(err), fields).Msg(msg)
}

// Fatal logs fatal level messages and exits
func (l *ZerologLogger) Fatal(msg string, err error, fields ...map[string]interface{}) {
	applyFields(l.zl.Fatal().Err(err), fields).Msg(msg)
}

// WithFields returns a logger that includes fields on every entry
func (l *ZerologLogger) WithFields(fields map[string]interface{}) interfaces.Logger {
	return &ZerologLogger{zl: l.zl.With().Fields(fields).Logger()}
}

func applyFields(ev *zerolog.Event, fields []map[string]interface{}) *zerolog.Event {
	for _, m := range fields {
		ev = ev.Fields(m)
	}
	return ev
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
