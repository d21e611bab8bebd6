// Package logging implements the Logger collaborator: a structured, leveled
// logging interface consumed by every core component. It wraps
// github.com/phuslu/log behind a minimal interface so the rest of the
// module never imports phuslu/log directly.
package logging

import (
	"os"
	"time"

	"github.com/phuslu/log"
)

// Field is one optional structured key/value attached to a log line.
type Field struct {
	key   string
	value any
}

// Operation names the component operation a log line is reporting on.
func Operation(v string) Field { return Field{"operation", v} }

// DurationMS records how long an operation took, in milliseconds.
func DurationMS(v float64) Field { return Field{"duration_ms", v} }

// FilePath names the file an operation concerns.
func FilePath(v string) Field { return Field{"file_path", v} }

// EntityCount records how many entities an operation produced or touched.
func EntityCount(v int) Field { return Field{"entity_count", v} }

// Err attaches an error to the log line.
func Err(err error) Field { return Field{"error", err} }

// RunID tags every line from a single index/watch pass with the same
// correlation ID, so lines from concurrent passes can be told apart.
func RunID(v string) Field { return Field{"run_id", v} }

// Logger is the leveled, structured logging surface every component
// consumes. Implementations must be safe for concurrent use.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

type phusluLogger struct {
	logger log.Logger
}

// Level is the minimum severity a Logger will emit.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warning"
	LevelError Level = "error"
)

// New builds a Logger writing structured, timestamped lines to w at the
// given minimum level. A nil w defaults to os.Stderr.
func New(level Level, w *os.File) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &phusluLogger{
		logger: log.Logger{
			Level:      toPhusluLevel(level),
			TimeFormat: time.RFC3339,
			Writer:     &log.IOWriter{Writer: w},
		},
	}
}

func toPhusluLevel(l Level) log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func apply(e *log.Entry, fields []Field) *log.Entry {
	for _, f := range fields {
		switch v := f.value.(type) {
		case string:
			e = e.Str(f.key, v)
		case int:
			e = e.Int(f.key, v)
		case float64:
			e = e.Float64(f.key, v)
		case error:
			if v != nil {
				e = e.Str(f.key, v.Error())
			}
		default:
			e = e.Interface(f.key, v)
		}
	}
	return e
}

func (l *phusluLogger) Debug(msg string, fields ...Field) {
	apply(l.logger.Debug(), fields).Msg(msg)
}

func (l *phusluLogger) Info(msg string, fields ...Field) {
	apply(l.logger.Info(), fields).Msg(msg)
}

func (l *phusluLogger) Warn(msg string, fields ...Field) {
	apply(l.logger.Warn(), fields).Msg(msg)
}

func (l *phusluLogger) Error(msg string, fields ...Field) {
	apply(l.logger.Error(), fields).Msg(msg)
}

// Noop returns a Logger that discards every line, for tests and callers
// that don't care about log output.
func Noop() Logger { return noop{} }

type noop struct{}

func (noop) Debug(string, ...Field) {}
func (noop) Info(string, ...Field)  {}
func (noop) Warn(string, ...Field)  {}
func (noop) Error(string, ...Field) {}
