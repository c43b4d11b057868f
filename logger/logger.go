package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gaborage/adapter-bricks/trace"
)

// Field names attached by WithContext.
const (
	FieldTraceID  = "trace_id"
	FieldJobRunID = "job_run_id"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
type ZeroLogger struct {
	zlog   *zerolog.Logger
	filter *SensitiveDataFilter
}

var _ Logger = (*ZeroLogger)(nil)

var callerMarshalOnce sync.Once

// New creates a logger writing to stdout. If pretty is true, output is
// formatted for human readability. An unknown level falls back to info.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithWriter(os.Stdout, level, pretty)
}

// NewWithWriter creates a logger writing to w with the default sensitive
// field filter.
func NewWithWriter(w io.Writer, level string, pretty bool) *ZeroLogger {
	return NewWithFilter(w, level, pretty, DefaultFilterConfig())
}

// NewWithFilter creates a logger writing to w with a custom filter configuration.
func NewWithFilter(w io.Writer, level string, pretty bool, filterConfig *FilterConfig) *ZeroLogger {
	callerMarshalOnce.Do(func() {
		zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
			base := filepath.Base(file)
			parent := filepath.Base(filepath.Dir(file))
			if parent != "." && parent != "" {
				return parent + "/" + base + ":" + strconv.Itoa(line)
			}
			return base + ":" + strconv.Itoa(line)
		}
	})

	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(w).With().Timestamp().CallerWithSkipFrameCount(3).Logger()

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l, filter: NewSensitiveDataFilter(filterConfig)}
}

// Nop returns a logger that discards everything.
func Nop() *ZeroLogger {
	l := zerolog.Nop()
	return &ZeroLogger{zlog: &l}
}

// WithContext returns a logger carrying the trace id and job run id found in
// ctx. The receiver is returned unchanged when ctx holds neither.
func (l *ZeroLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}
	traceID, hasTrace := trace.IDFromContext(ctx)
	jobRunID, hasJob := trace.JobRunIDFromContext(ctx)
	if !hasTrace && !hasJob {
		return l
	}

	c := l.zlog.With()
	if hasTrace {
		c = c.Str(FieldTraceID, traceID)
	}
	if hasJob {
		c = c.Str(FieldJobRunID, jobRunID)
	}
	zl := c.Logger()
	return &ZeroLogger{zlog: &zl, filter: l.filter}
}

// WithFields returns a logger with additional fields attached to all entries.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	if l.filter != nil {
		fields = l.filter.FilterFields(fields)
	}
	log := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &log, filter: l.filter}
}
