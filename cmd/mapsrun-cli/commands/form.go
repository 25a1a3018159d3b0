package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/use-agent/mapsrun/models"
	"github.com/use-agent/mapsrun/tui"
)

func init() {
	rootCmd.AddCommand(formCmd)
}

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Opens the interactive parameter form.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		model := tui.NewModel(ctx, cancel, newRunner(), models.NewScrapeRequest())
		_, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
		if err != nil && ctx.Err() != nil {
			// Quitting cancels ctx; that is not a failure.
			return nil
		}
		return err
	},
}
