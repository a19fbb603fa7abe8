package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Level string

const (
	INFO  Level = "INFO"
	WARN  Level = "WARN"
	ERROR Level = "ERROR"
	DEBUG Level = "DEBUG"
)

// Logger writes JSON lines with key/value data. Args are alternating key, value pairs.
type Logger struct {
	level Level
	sl    *slog.Logger
}

func New(level string) *Logger {
	return NewWithWriter(os.Stdout, level)
}

func NewWithWriter(w io.Writer, level string) *Logger {
	lvl := ParseLevel(level)
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl.slogLevel()})
	return &Logger{level: lvl, sl: slog.New(h)}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWithWriter(io.Discard, string(ERROR))
}

func ParseLevel(s string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case DEBUG:
		return DEBUG
	case WARN, "WARNING":
		return WARN
	case ERROR:
		return ERROR
	default:
		return INFO
	}
}

func (lv Level) slogLevel() slog.Level {
	switch lv {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a child logger that always carries args.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{level: l.level, sl: l.sl.With(args...)}
}

// Slog exposes the underlying logger for packages that take *slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.sl
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.sl.Info(msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.sl.Warn(msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.sl.Error(msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.sl.Debug(msg, args...)
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.sl.Error(msg, args...)
	os.Exit(1)
}
