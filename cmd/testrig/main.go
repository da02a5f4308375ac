package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"testrig/internal/cli"
	"testrig/internal/cli/commands"
	"testrig/internal/config"
	"testrig/internal/domain"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "testrig",
		Short: "Test orchestration for adapter suites",
		Long: `Discover and filter test files, boot a live HTTP server and an authenticating
proxy for adapter tests, run the suite once per interpreter version and fail
when the project's own source emits warnings.`,
		Version:       version,
		SilenceErrors: true,
	}

	// Create initial config with defaults, reloaded from env and flags before each command
	cfg := config.New()

	var flags cli.Flags

	cmds := commands.NewCommands(cfg)
	cmds.Register(rootCmd, &flags, cfg)

	if err := rootCmd.Execute(); err != nil {
		// The runner already printed its own failure output
		var exitErr *domain.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		}
		os.Exit(domain.ExitCode(err))
	}
}
