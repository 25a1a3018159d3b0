package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/use-agent/mapsrun/config"
	"github.com/use-agent/mapsrun/invoker"
	"github.com/use-agent/mapsrun/runner"
)

var (
	workDir    *string
	binaryName *string
	logLevel   *string
)

var rootCmd = &cobra.Command{
	Use:           "mapsrun-cli",
	Short:         "mapsrun-cli builds, prepares and runs google-maps-scraper from the terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		lc := config.LogConfig{Level: *logLevel, Format: "text"}
		slog.SetDefault(slog.New(lc.Handler(cmd.ErrOrStderr())))
	},
}

func init() {
	rc := config.LoadRunner()
	workDir = rootCmd.PersistentFlags().String("work-dir", rc.WorkDir, "Directory holding the scraper sources and binary.")
	binaryName = rootCmd.PersistentFlags().String("binary", rc.BinaryName, "Name of the scraper executable.")
	logLevel = rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error.")
}

// newRunner builds a runner from the environment overlaid with flags.
func newRunner() *runner.Runner {
	rc := config.LoadRunner()
	rc.WorkDir = *workDir
	rc.BinaryName = *binaryName
	return runner.New(invoker.New(rc))
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
