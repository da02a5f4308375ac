package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"testrig/internal/cli"
	"testrig/internal/config"
	"testrig/internal/logging"
)

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Serve    *ServeCommand
	Warnings *WarningsCommand
}

// NewCommands creates all commands. Dependencies are built when a command
// runs, after flags and environment have been folded into cfg.
func NewCommands(cfg *config.Config) *Commands {
	return &Commands{
		Run:      NewRunCommand(cfg),
		List:     NewListCommand(cfg),
		Serve:    NewServeCommand(),
		Warnings: NewWarningsCommand(cfg),
	}
}

// loadConfig replaces cfg in place with defaults, .env, environment and flags
func loadConfig(cfg *config.Config, flags *cli.Flags) error {
	loaded, err := config.Load(flags.ToConfigFlags())
	if err != nil {
		return err
	}
	*cfg = *loaded
	logging.Init(os.Stderr, cfg.Flags.Verbose)
	return nil
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	preRun := func(cmd *cobra.Command, args []string) error {
		return loadConfig(cfg, flags)
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log diagnostic details to stderr")

	// Run command
	runCmd := &cobra.Command{
		Use:   "run [filters...] [-- runner-args...]",
		Short: "Run the test suite",
		Long: `Discover test files, keep those matching the given filters, boot the live
servers when adapter tests are selected and run the files through the runner.
Arguments after -- are passed to the runner unchanged.`,
		RunE:    c.Run.Execute,
		PreRunE: preRun,
	}
	runCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list [filters...]",
		Short:   "List discovered tests",
		Long:    "Scan and list test files without executing them. Files that need the live servers are marked [A].",
		RunE:    c.List.Execute,
		PreRunE: preRun,
	}
	listCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List test cases of each file")
	rootCmd.AddCommand(listCmd)

	// Warnings command
	warningsCmd := &cobra.Command{
		Use:     "warnings",
		Short:   "Browse warnings from the last run",
		Long:    "Display the warnings captured by the last run in an interactive viewer",
		Args:    cobra.NoArgs,
		RunE:    c.Warnings.Execute,
		PreRunE: preRun,
	}
	rootCmd.AddCommand(warningsCmd)

	// Serve commands, spawned by run
	serveCmd := &cobra.Command{
		Use:    "serve",
		Short:  "Run the live target or proxy server in the foreground",
		Hidden: true,
	}
	liveFlags := &cli.ServeFlags{}
	proxyFlags := &cli.ServeFlags{}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "Serve the live target for adapter tests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Serve.Live(cmd.Context(), liveFlags, slog.New(slog.NewTextHandler(os.Stdout, nil)))
		},
	}
	liveCmd.Flags().IntVar(&liveFlags.Port, "port", config.DefaultPort, "Port to listen on")
	liveCmd.Flags().StringVar(&liveFlags.CertFile, "cert", "", "TLS certificate file")
	liveCmd.Flags().StringVar(&liveFlags.KeyFile, "key", "", "TLS key file")
	liveCmd.MarkFlagsRequiredTogether("cert", "key")

	proxyCmd := &cobra.Command{
		Use:   "proxy",
		Short: "Serve the authenticating forward proxy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Serve.Proxy(cmd.Context(), proxyFlags, slog.New(slog.NewTextHandler(os.Stdout, nil)))
		},
	}
	proxyCmd.Flags().IntVar(&proxyFlags.Port, "port", config.DefaultProxyPort, "Port to listen on")
	proxyCmd.Flags().StringVar(&proxyFlags.User, "user", config.DefaultProxyUser, "Proxy user")
	proxyCmd.Flags().StringVar(&proxyFlags.Password, "password", config.DefaultProxyPassword, "Proxy password")

	serveCmd.AddCommand(liveCmd, proxyCmd)
	rootCmd.AddCommand(serveCmd)
}
