package logger

import (
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Logger is a thin leveled key-value logger used across the service.
type Logger struct {
	l *charmlog.Logger
}

func NewLogger(level string) *Logger {
	l := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "currency-tracker",
	})

	l.SetLevel(parseLevel(level))

	return &Logger{l: l}
}

// SetLevel re-levels the logger, e.g. once configuration has been loaded.
func (x *Logger) SetLevel(level string) {
	x.l.SetLevel(parseLevel(level))
}

func parseLevel(level string) charmlog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return charmlog.DebugLevel
	case "warn":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// With returns a logger that adds the given key-value pairs to every record.
func (x *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{l: x.l.With(keyvals...)}
}

func (x *Logger) Debug(msg string, keyvals ...interface{}) {
	x.l.Debug(msg, keyvals...)
}

func (x *Logger) Info(msg string, keyvals ...interface{}) {
	x.l.Info(msg, keyvals...)
}

func (x *Logger) Warn(msg string, keyvals ...interface{}) {
	x.l.Warn(msg, keyvals...)
}

func (x *Logger) Error(msg string, keyvals ...interface{}) {
	x.l.Error(msg, keyvals...)
}
