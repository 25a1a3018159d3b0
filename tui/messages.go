package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/use-agent/mapsrun/models"
)

// Actions is the set of operations the TUI can trigger. *runner.Runner
// implements it.
type Actions interface {
	Scrape(ctx context.Context, req models.ScrapeRequest) *models.ScrapeResponse
	Build(ctx context.Context) *models.ToolResponse
	MakeExecutable(ctx context.Context) *models.ToolResponse
}

// ScrapeDoneMsg carries the outcome of a scrape run.
type ScrapeDoneMsg struct {
	Resp *models.ScrapeResponse
}

// ToolDoneMsg carries the outcome of a build or make-executable action.
type ToolDoneMsg struct {
	Resp *models.ToolResponse
}

func scrapeCmd(ctx context.Context, a Actions, req models.ScrapeRequest) tea.Cmd {
	return func() tea.Msg {
		return ScrapeDoneMsg{Resp: a.Scrape(ctx, req)}
	}
}

func buildCmd(ctx context.Context, a Actions) tea.Cmd {
	return func() tea.Msg {
		return ToolDoneMsg{Resp: a.Build(ctx)}
	}
}

func makeExecutableCmd(ctx context.Context, a Actions) tea.Cmd {
	return func() tea.Msg {
		return ToolDoneMsg{Resp: a.MakeExecutable(ctx)}
	}
}
