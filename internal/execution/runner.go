package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"testrig/internal/config"
	"testrig/internal/domain"
)

const waitDelay = 2 * time.Second

// Invocation is one run of the test runner over a file set
type Invocation struct {
	Files       []string
	Passthrough []string
	Env         []string
	Version     string // Empty means the ambient interpreter
}

// Runner executes the configured test runner command
type Runner struct {
	config *config.Config
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// NewRunner creates a new Runner writing the child's output to stdout and stderr
func NewRunner(cfg *config.Config, stdout, stderr io.Writer, logger *slog.Logger) *Runner {
	return &Runner{config: cfg, stdout: stdout, stderr: stderr, logger: logger}
}

// Args builds the runner argv: runner, files, then "--" and passthrough when given
func (r *Runner) Args(inv Invocation) []string {
	args := append([]string(nil), r.config.Runner...)
	args = append(args, inv.Files...)
	if len(inv.Passthrough) > 0 {
		args = append(args, "--")
		args = append(args, inv.Passthrough...)
	}
	return args
}

// Run executes one invocation. Stderr is split: all of it goes to capture,
// warning-marked lines are dropped from the pass-through stream.
func (r *Runner) Run(ctx context.Context, inv Invocation, capture io.Writer) error {
	args := r.Args(inv)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	// A grandchild holding stderr open must not block Wait after cancellation
	cmd.WaitDelay = waitDelay

	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, inv.Env...)
	if inv.Version != "" {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", r.config.VersionEnv, inv.Version))
	}
	cmd.Dir = r.config.ProjectPath
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.stdout

	splitter := NewLineSplitter(r.config.WarningMarker, r.stderr, capture)
	cmd.Stderr = splitter

	r.logger.Debug("running tests", "args", args, "version", inv.Version, "files", len(inv.Files))

	// Wait returns only after the stderr copy finished, so capture is complete afterwards
	err := cmd.Run()
	if flushErr := splitter.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("write captured stderr: %w", flushErr)
	}
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &domain.ExitError{Code: exitErr.ExitCode(), Version: inv.Version}
	}
	return fmt.Errorf("run %s: %w", args[0], err)
}
