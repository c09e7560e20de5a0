// Package log wraps slog with a component attribute so every line can
// be traced back to the subsystem that emitted it.
package log

import (
	"io"
	"log/slog"
	"os"
)

type Logger struct {
	*slog.Logger
}

type Config struct {
	Level     slog.Level
	Component string
	Writer    io.Writer
}

func New(cfg Config) *Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level})
	component := cfg.Component
	if component == "" {
		component = "saldo"
	}
	return &Logger{Logger: slog.New(handler).With("component", component)}
}

// SetDefault installs the logger process-wide so packages using the
// plain slog API pick up the same handler.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
