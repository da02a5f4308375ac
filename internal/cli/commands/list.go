package commands

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"testrig/internal/config"
	"testrig/internal/discovery"
	"testrig/internal/domain"
	"testrig/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config *config.Config
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config) *ListCommand {
	return &ListCommand{config: cfg}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	scanner := discovery.NewScanner(lc.config.TestSuffix, lc.config.PathsToIgnore)
	tests, err := scanner.Scan(lc.config.GetTestPath())
	if err != nil {
		return err
	}

	selected, err := discovery.NewFilter().Select(tests, args)
	if errors.Is(err, domain.ErrNoTestsMatched) || (err == nil && len(selected) == 0) {
		color.Yellow("No tests found")
		return nil
	}
	if err != nil {
		return err
	}

	formatter := ui.NewFormatter(lc.config, discovery.NewParser(), cmd.OutOrStdout())
	return formatter.PrintTestList(selected, lc.config.Flags.TestCases)
}
