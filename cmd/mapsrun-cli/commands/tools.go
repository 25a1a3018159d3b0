package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/use-agent/mapsrun/models"
	"github.com/use-agent/mapsrun/tui"
)

func init() {
	rootCmd.AddCommand(buildCmd, chmodCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compiles the scraper sources in --work-dir into the executable.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTool(cmd, newRunner().Build(cmd.Context()))
	},
}

var chmodCmd = &cobra.Command{
	Use:   "chmod",
	Short: "Marks the scraper executable (chmod +x). Linux/Unix only.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTool(cmd, newRunner().MakeExecutable(cmd.Context()))
	},
}

func printTool(cmd *cobra.Command, resp *models.ToolResponse) error {
	if resp.Success {
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderTool(resp))
		return nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), tui.RenderTool(resp))
	return errors.New(resp.Error.Code)
}
