// Package tui provides the Bubble Tea terminal form for the scraper: the
// three run parameters, the build and make-executable actions, and a styled
// rendering of the last outcome.
package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/use-agent/mapsrun/models"
)

// Field indexes into Model.inputs.
const (
	fieldQuery = iota
	fieldDepth
	fieldLang
	fieldCount
)

var fieldLabels = [fieldCount]string{"Search query", "Scraping depth", "Language code"}

// Model is the Bubble Tea model for the scraper form.
type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	actions Actions
	spinner spinner.Model
	inputs  [fieldCount]textinput.Model
	focus   int

	running  string // label of the in-flight action, empty when idle
	scrape   *models.ScrapeResponse
	tool     *models.ToolResponse
	quitting bool
	width    int
}

// NewModel creates a form prefilled with req and wired to actions. A zero
// req prefills the form defaults.
func NewModel(ctx context.Context, cancel context.CancelFunc, actions Actions, req models.ScrapeRequest) Model {
	if req == (models.ScrapeRequest{}) {
		req = models.NewScrapeRequest()
	}
	req.Clamp()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		ctx:     ctx,
		cancel:  cancel,
		actions: actions,
		spinner: spin,
	}
	values := [fieldCount]string{req.Query, strconv.Itoa(req.Depth), req.Lang}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = 40
		ti.SetValue(values[i])
		m.inputs[i] = ti
	}
	m.inputs[fieldDepth].CharLimit = 6
	m.inputs[fieldLang].CharLimit = 16
	m.inputs[fieldQuery].Focus()
	return m
}

// Request reads the form into a ScrapeRequest. A depth that is not a number
// falls back to the default; values below the minimum are clamped. A cleared
// query or lang is sent empty.
func (m Model) Request() models.ScrapeRequest {
	req := models.ScrapeRequest{
		Query: strings.TrimSpace(m.inputs[fieldQuery].Value()),
		Lang:  strings.TrimSpace(m.inputs[fieldLang].Value()),
	}
	depth, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldDepth].Value()))
	switch {
	case err != nil:
		req.Depth = models.DefaultDepth
	case depth < models.MinDepth:
		req.Depth = models.MinDepth
	default:
		req.Depth = depth
	}
	return req
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages from the Bubble Tea runtime.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		case "tab", "down":
			cmd := m.setFocus((m.focus + 1) % fieldCount)
			return m, cmd
		case "shift+tab", "up":
			cmd := m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, cmd
		case "enter":
			if m.running != "" {
				return m, nil
			}
			req := m.Request()
			return m.start("Scraping "+strconv.Quote(req.Query), scrapeCmd(m.ctx, m.actions, req))
		case "ctrl+b":
			if m.running != "" {
				return m, nil
			}
			return m.start("Building executable", buildCmd(m.ctx, m.actions))
		case "ctrl+e":
			if m.running != "" {
				return m, nil
			}
			return m.start("Changing permissions", makeExecutableCmd(m.ctx, m.actions))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case ScrapeDoneMsg:
		m.running = ""
		m.scrape, m.tool = msg.Resp, nil
		return m, nil

	case ToolDoneMsg:
		m.running = ""
		m.tool, m.scrape = msg.Resp, nil
		return m, nil

	case spinner.TickMsg:
		if m.running == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) start(label string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.running = label
	m.scrape, m.tool = nil, nil
	return m, tea.Batch(m.spinner.Tick, cmd)
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

// View renders the form and the last outcome.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Google Maps Scraper"))
	b.WriteString("\n\n")
	for i := range m.inputs {
		label := labelStyle
		if i == m.focus {
			label = focusedLabelStyle
		}
		b.WriteString(label.Render(fieldLabels[i]))
		b.WriteString("\n")
		b.WriteString(inputBoxStyle.Render(m.inputs[i].View()))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("enter: start scraping • ctrl+b: build executable • ctrl+e: make executable • tab: next field • ctrl+c: quit"))
	b.WriteString("\n\n")

	switch {
	case m.running != "":
		b.WriteString(m.spinner.View() + " " + m.running + "...\n")
	case m.scrape != nil:
		b.WriteString(RenderScrape(m.scrape))
	case m.tool != nil:
		b.WriteString(RenderTool(m.tool))
	}
	return b.String()
}

// Running reports whether an action is in flight.
func (m Model) Running() bool {
	return m.running != ""
}

// LastScrape returns the most recent scrape outcome, if any.
func (m Model) LastScrape() *models.ScrapeResponse {
	return m.scrape
}
