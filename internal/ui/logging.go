package ui

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

type Logger struct {
	Debug bool
	l     *slog.Logger
}

func NewLogger(debug bool) *Logger {
	return NewLoggerTo(os.Stderr, debug)
}

func NewLoggerTo(w io.Writer, debug bool) *Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	return &Logger{
		Debug: debug,
		l:     slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewLoggerTo(io.Discard, false)
}

// With returns a logger that adds key/value context to every line.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Debug: l.Debug, l: l.l.With(args...)}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.l.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...any) {
	l.l.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.l.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.l.Error(fmt.Sprintf(format, args...))
}
