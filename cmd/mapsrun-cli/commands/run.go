package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/use-agent/mapsrun/models"
	"github.com/use-agent/mapsrun/tui"
)

var (
	runQuery *string
	runDepth *int
	runLang  *string
	runJSON  *bool
)

func init() {
	runQuery = runCmd.Flags().String("query", models.DefaultQuery, "Search query written to the scraper's input file.")
	runDepth = runCmd.Flags().Int("depth", models.DefaultDepth, "Maximum scroll depth (minimum 1).")
	runLang = runCmd.Flags().String("lang", models.DefaultLang, "Language code for results.")
	runJSON = runCmd.Flags().Bool("json", false, "Print records as JSON lines instead of a table.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--query <text>] [--depth <n>] [--lang <code>] [--json]",
	Short: "Runs the scraper once and prints the records it produced.",
	RunE: func(cmd *cobra.Command, args []string) error {
		depth := *runDepth
		if depth < models.MinDepth {
			depth = models.MinDepth
		}
		req := models.ScrapeRequest{Query: *runQuery, Depth: depth, Lang: *runLang}

		resp := newRunner().Scrape(cmd.Context(), req)
		out := cmd.OutOrStdout()

		if !resp.Success {
			fmt.Fprint(cmd.ErrOrStderr(), tui.RenderScrape(resp))
			return errors.New(resp.Error.Code)
		}
		if !*runJSON {
			fmt.Fprint(out, tui.RenderScrape(resp))
			return nil
		}
		if resp.Status == models.StatusNoResults {
			fmt.Fprintln(cmd.ErrOrStderr(), resp.Message)
		}
		for _, rec := range resp.Records {
			fmt.Fprintln(out, string(rec))
		}
		return nil
	},
}
