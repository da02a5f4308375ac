package execution

import (
	"context"
	"io"

	"github.com/fatih/color"

	"testrig/internal/config"
	"testrig/internal/domain"
)

// VersionExecutor repeats the whole run once per configured interpreter version
type VersionExecutor struct {
	config  *config.Config
	runner  *Runner
	capture io.Writer
	out     io.Writer
}

// NewVersionExecutor creates a VersionExecutor archiving stderr into capture
func NewVersionExecutor(cfg *config.Config, runner *Runner, capture, out io.Writer) *VersionExecutor {
	return &VersionExecutor{config: cfg, runner: runner, capture: capture, out: out}
}

// Execute runs the files once, or once per version with a marker before each.
// It stops at the first failing run.
func (e *VersionExecutor) Execute(ctx context.Context, files domain.TestFileSet, passthrough []string, env []string) error {
	inv := Invocation{Files: files, Passthrough: passthrough, Env: env}

	if len(e.config.Versions) == 0 {
		return e.runner.Run(ctx, inv, e.capture)
	}

	for _, version := range e.config.Versions {
		color.New(color.FgCyan, color.Bold).Fprintf(e.out, "[%s]\n", version)
		inv.Version = version
		if err := e.runner.Run(ctx, inv, e.capture); err != nil {
			return err
		}
	}
	return nil
}
