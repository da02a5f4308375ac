package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"testrig/internal/config"
	"testrig/internal/discovery"
	"testrig/internal/domain"
	"testrig/internal/execution"
	"testrig/internal/server"
	"testrig/internal/storage"
	"testrig/internal/ui"
	"testrig/internal/warnings"
)

// RunCommand handles the run command
type RunCommand struct {
	config     *config.Config
	notify     func(c chan<- os.Signal, sig ...os.Signal)
	stopNotify func(c chan<- os.Signal)
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config) *RunCommand {
	return &RunCommand{
		config:     cfg,
		notify:     signal.Notify,
		stopNotify: signal.Stop,
	}
}

// watchInterrupts cancels the returned context on SIGINT or SIGTERM.
// received reports the signal, if any; stop must be called when the run ends.
func (rc *RunCommand) watchInterrupts(parent context.Context) (ctx context.Context, received func() os.Signal, stop func()) {
	ctx, cancel := context.WithCancel(parent)
	signals := make(chan os.Signal, 1)
	rc.notify(signals, os.Interrupt, syscall.SIGTERM)

	var mu sync.Mutex
	var got os.Signal
	done := make(chan struct{})
	go func() {
		select {
		case sig := <-signals:
			slog.Warn("interrupted, stopping run", "signal", sig.String())
			mu.Lock()
			got = sig
			mu.Unlock()
			cancel()
		case <-done:
		}
	}()

	received = func() os.Signal {
		mu.Lock()
		defer mu.Unlock()
		return got
	}
	stop = func() {
		rc.stopNotify(signals)
		close(done)
		cancel()
	}
	return ctx, received, stop
}

// splitArgs separates filters from the runner passthrough at "--"
func splitArgs(cmd *cobra.Command, args []string) (filters, passthrough []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, nil
	}
	return args[:dash], args[dash:]
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	filters, passthrough := splitArgs(cmd, args)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	// A failing run already reported itself; cobra should not print usage
	cmd.SilenceUsage = true
	return rc.Run(ctx, filters, passthrough, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// Run discovers, filters and executes the tests, then enforces the warning policy.
// The summary is saved whenever the run got past file selection. An interrupt
// cancels the run; servers and the capture file are cleaned up before it returns.
func (rc *RunCommand) Run(ctx context.Context, filters, passthrough []string, stdout, stderr io.Writer) (err error) {
	ctx, interrupted, stop := rc.watchInterrupts(ctx)
	defer stop()
	defer func() {
		if sig := interrupted(); sig != nil {
			err = &domain.InterruptedError{Signal: sig}
		}
	}()

	start := time.Now()
	summary := &domain.RunSummary{
		Versions:    rc.config.Versions,
		Passthrough: passthrough,
	}

	files, err := rc.selectFiles(filters)
	if err != nil {
		return err
	}
	summary.Files = files

	err = rc.execute(ctx, files, passthrough, stdout, stderr, summary)
	if sig := interrupted(); sig != nil {
		err = &domain.InterruptedError{Signal: sig}
	}

	summary.SetDuration(time.Since(start))
	summary.ExitCode = domain.ExitCode(err)
	if err != nil {
		summary.Error = err.Error()
	}
	if saveErr := storage.NewJSONStorage(rc.config).Save(summary); saveErr != nil {
		slog.Warn("could not save run summary", "err", saveErr)
	}
	if rc.config.Flags.Verbose {
		ui.NewFormatter(rc.config, discovery.NewParser(), stderr).PrintSummary(summary)
	}
	return err
}

func (rc *RunCommand) selectFiles(filters []string) (domain.TestFileSet, error) {
	scanner := discovery.NewScanner(rc.config.TestSuffix, rc.config.PathsToIgnore)
	discovered, err := scanner.Scan(rc.config.GetTestPath())
	if err != nil {
		return nil, err
	}
	return discovery.NewFilter().Select(discovered, filters)
}

func (rc *RunCommand) execute(ctx context.Context, files domain.TestFileSet, passthrough []string, stdout, stderr io.Writer, summary *domain.RunSummary) error {
	capture, err := os.CreateTemp("", "testrig-stderr-*.log")
	if err != nil {
		return fmt.Errorf("create capture file: %w", err)
	}
	defer os.Remove(capture.Name())
	defer capture.Close()

	var env []string
	var session *server.Session
	if rc.config.NeedsServers(files) {
		manager := server.NewManager(rc.config,
			server.WithOutput(stderr),
			server.WithLogger(slog.Default()),
			server.WithIndicator(ui.SpinnerFactory(stderr)),
			server.WithSignalHandling(false),
		)
		session, err = manager.Start(ctx)
		if err != nil {
			return err
		}
		// Release is once-only; this only matters if execution panics
		defer session.Release(true)

		env = session.Env()
		summary.ServersStarted = true
		summary.BaseURL = rc.config.BaseURL()
		summary.ProxyURL = rc.config.ProxyURL()
	}

	runner := execution.NewRunner(rc.config, stdout, stderr, slog.Default())
	var executor execution.Executor = execution.NewVersionExecutor(rc.config, runner, capture, stdout)
	execErr := executor.Execute(ctx, files, passthrough, env)

	if session != nil {
		session.Release(execErr != nil || ctx.Err() != nil)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}
	classifier := warnings.NewClassifier(rc.config.WarningMarker, cwd, rc.config.DependencyDir)
	report, err := classifier.ClassifyFile(capture.Name())
	if err != nil {
		return fmt.Errorf("classify warnings: %w", err)
	}
	report.Print(stderr)
	summary.Warnings = report.Records
	summary.ProjectWarnings = len(report.ProjectWarnings())

	if execErr != nil {
		return execErr
	}
	return report.Err()
}
