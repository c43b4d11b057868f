// Package logger defines the structured logging contract used by the adapter
// helpers and its zerolog implementation.
package logger

import (
	"context"
	"time"
)

// Logger creates leveled log events and derives loggers carrying extra fields.
type Logger interface {
	Info() LogEvent
	Error() LogEvent
	Debug() LogEvent
	Warn() LogEvent
	Fatal() LogEvent
	WithContext(ctx context.Context) Logger
	WithFields(fields map[string]any) Logger
}

// LogEvent is a structured log line under construction. Nothing is written
// until Msg or Msgf is called.
type LogEvent interface {
	Msg(msg string)
	Msgf(format string, args ...any)
	Err(err error) LogEvent
	Str(key, value string) LogEvent
	Int(key string, value int) LogEvent
	Int64(key string, value int64) LogEvent
	Float64(key string, value float64) LogEvent
	Bool(key string, value bool) LogEvent
	Dur(key string, d time.Duration) LogEvent
	Interface(key string, i any) LogEvent
	Bytes(key string, val []byte) LogEvent
}
