package commands

import (
	"github.com/spf13/cobra"

	"testrig/internal/config"
	"testrig/internal/storage"
	"testrig/internal/ui"
)

// WarningsCommand opens the warnings of the last run
type WarningsCommand struct {
	config *config.Config
	viewer func() ui.Viewer
}

// NewWarningsCommand creates a new WarningsCommand
func NewWarningsCommand(cfg *config.Config) *WarningsCommand {
	return &WarningsCommand{
		config: cfg,
		viewer: func() ui.Viewer { return ui.NewWarningViewer() },
	}
}

// Execute runs the command
func (wc *WarningsCommand) Execute(cmd *cobra.Command, args []string) error {
	summary, err := storage.NewJSONStorage(wc.config).Load()
	if err != nil {
		return err
	}
	return wc.viewer().View(summary)
}
