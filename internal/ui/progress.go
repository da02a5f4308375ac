package ui

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"testrig/internal/server"
)

// Spinner is an indeterminate progress indicator shown while a server boots
type Spinner struct {
	bar *progressbar.ProgressBar
}

// NewSpinner creates a spinner writing to w (stderr when nil)
func NewSpinner(w io.Writer, description string) *Spinner {
	if w == nil {
		w = os.Stderr
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionClearOnFinish(),
	)
	return &Spinner{bar: bar}
}

// Tick advances the spinner by one probe attempt
func (s *Spinner) Tick() {
	_ = s.bar.Add(1)
}

// Done stops the spinner and clears its line
func (s *Spinner) Done() {
	_ = s.bar.Finish()
}

// SpinnerFactory adapts NewSpinner to the server manager's indicator hook.
// Spinner frames are noise in CI logs, so anything but a terminal gets no spinner.
func SpinnerFactory(w io.Writer) func(string) server.Indicator {
	if !isTerminal(w) {
		return func(string) server.Indicator { return server.NoopIndicator{} }
	}
	return func(description string) server.Indicator {
		return NewSpinner(w, description)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
