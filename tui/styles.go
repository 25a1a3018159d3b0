package tui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/use-agent/mapsrun/models"
	"github.com/use-agent/mapsrun/relay"
)

var (
	titleStyle        = lipgloss.NewStyle().Bold(true)
	successStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle        = lipgloss.NewStyle().Faint(true)
	focusedLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	inputBoxStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	dimStyle          = lipgloss.NewStyle().Faint(true)
	cellStyle         = lipgloss.NewStyle().Padding(0, 1)
	ratingStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("11"))
)

// RenderScrape produces a Lip Gloss styled view of a scrape outcome: a
// records table, the "no results" warning, or the error with its stderr.
func RenderScrape(resp *models.ScrapeResponse) string {
	if resp == nil {
		return errorStyle.Render("No results available.") + "\n"
	}

	var b strings.Builder
	switch {
	case !resp.Success:
		b.WriteString(renderError(resp.Error))
	case resp.Status == models.StatusNoResults:
		b.WriteString(warnStyle.Render(resp.Message))
		b.WriteString("\n")
	default:
		b.WriteString(RecordsTable(resp.Records))
		b.WriteString("\n")
		b.WriteString(successStyle.Render(fmt.Sprintf(
			"Scraping completed: %d records in %dms", resp.Total, resp.Timing.TotalMs,
		)))
		b.WriteString("\n")
	}
	return b.String()
}

// RecordsTable renders one row per record in file order.
func RecordsTable(records []json.RawMessage) string {
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		s := relay.Summarize(rec)
		rows = append(rows, []string{
			strconv.Itoa(i + 1), s.Title, s.Category, s.Address, s.Rating, s.ReviewCount,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "Title", "Category", "Address", "Rating", "Reviews").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 4 {
				return ratingStyle
			}
			return cellStyle
		}).
		Rows(rows...).
		Render()
}

// RenderTool renders the outcome of build or make-executable.
func RenderTool(resp *models.ToolResponse) string {
	if resp.Success {
		return successStyle.Render(resp.Message) + "\n"
	}
	return renderError(resp.Error)
}

func renderError(e *models.ErrorDetail) string {
	if e == nil {
		return errorStyle.Render("Error: unknown failure") + "\n"
	}
	var b strings.Builder
	b.WriteString(errorStyle.Render("Error: " + e.Message))
	b.WriteString("\n")
	if e.Stderr != "" {
		b.WriteString(dimStyle.Render(strings.TrimRight(e.Stderr, "\n")))
		b.WriteString("\n")
	}
	if e.Raw != "" {
		b.WriteString(dimStyle.Render(strings.TrimRight(e.Raw, "\n")))
		b.WriteString("\n")
	}
	return b.String()
}
