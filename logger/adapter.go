package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// LogEventAdapter adapts zerolog events to the LogEvent interface, masking
// sensitive fields on the way in.
type LogEventAdapter struct {
	event  *zerolog.Event
	filter *SensitiveDataFilter
}

func (lea *LogEventAdapter) wrap(e *zerolog.Event) LogEvent {
	return &LogEventAdapter{event: e, filter: lea.filter}
}

// Msg logs the message
func (lea *LogEventAdapter) Msg(msg string) {
	lea.event.Msg(msg)
}

// Msgf logs a formatted message
func (lea *LogEventAdapter) Msgf(format string, args ...any) {
	lea.event.Msgf(format, args...)
}

// Err adds an error to the log event
func (lea *LogEventAdapter) Err(err error) LogEvent {
	return lea.wrap(lea.event.Err(err))
}

// Str adds a string field to the log event
func (lea *LogEventAdapter) Str(key, value string) LogEvent {
	if lea.filter != nil {
		value = lea.filter.FilterString(key, value)
	}
	return lea.wrap(lea.event.Str(key, value))
}

// Int adds an integer field to the log event
func (lea *LogEventAdapter) Int(key string, value int) LogEvent {
	return lea.wrap(lea.event.Int(key, value))
}

// Int64 adds an int64 field to the log event
func (lea *LogEventAdapter) Int64(key string, value int64) LogEvent {
	return lea.wrap(lea.event.Int64(key, value))
}

// Float64 adds a float64 field to the log event
func (lea *LogEventAdapter) Float64(key string, value float64) LogEvent {
	return lea.wrap(lea.event.Float64(key, value))
}

// Bool adds a boolean field to the log event
func (lea *LogEventAdapter) Bool(key string, value bool) LogEvent {
	return lea.wrap(lea.event.Bool(key, value))
}

// Dur adds a duration field to the log event
func (lea *LogEventAdapter) Dur(key string, d time.Duration) LogEvent {
	return lea.wrap(lea.event.Dur(key, d))
}

// Interface adds an arbitrary field to the log event
func (lea *LogEventAdapter) Interface(key string, i any) LogEvent {
	if lea.filter != nil {
		i = lea.filter.FilterValue(key, i)
	}
	return lea.wrap(lea.event.Interface(key, i))
}

// Bytes adds a byte slice field to the log event
func (lea *LogEventAdapter) Bytes(key string, val []byte) LogEvent {
	return lea.wrap(lea.event.Bytes(key, val))
}

// Info creates an info-level log event
func (l *ZeroLogger) Info() LogEvent {
	return &LogEventAdapter{event: l.zlog.Info(), filter: l.filter}
}

// Error creates an error-level log event
func (l *ZeroLogger) Error() LogEvent {
	return &LogEventAdapter{event: l.zlog.Error(), filter: l.filter}
}

// Debug creates a debug-level log event
func (l *ZeroLogger) Debug() LogEvent {
	return &LogEventAdapter{event: l.zlog.Debug(), filter: l.filter}
}

// Warn creates a warning-level log event
func (l *ZeroLogger) Warn() LogEvent {
	return &LogEventAdapter{event: l.zlog.Warn(), filter: l.filter}
}

// Fatal creates a fatal-level log event
func (l *ZeroLogger) Fatal() LogEvent {
	return &LogEventAdapter{event: l.zlog.Fatal(), filter: l.filter}
}
