// Package logging sets up the diagnostic logger. Human-facing output goes
// through the ui package; this logger is for what happens behind it.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w, at debug level when verbose
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Init builds the logger and installs it as the slog default
func Init(w io.Writer, verbose bool) *slog.Logger {
	logger := New(w, verbose)
	slog.SetDefault(logger)
	return logger
}
