package tui

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/use-agent/mapsrun/models"
)

type fakeActions struct {
	got    models.ScrapeRequest
	scrape *models.ScrapeResponse
	tool   *models.ToolResponse
}

func (f *fakeActions) Scrape(_ context.Context, req models.ScrapeRequest) *models.ScrapeResponse {
	f.got = req
	return f.scrape
}

func (f *fakeActions) Build(context.Context) *models.ToolResponse          { return f.tool }
func (f *fakeActions) MakeExecutable(context.Context) *models.ToolResponse { return f.tool }

func newTestModel(a Actions, req models.ScrapeRequest) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return NewModel(ctx, cancel, a, req)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestNewModel_Defaults(t *testing.T) {
	m := newTestModel(&fakeActions{}, models.ScrapeRequest{})

	want := [fieldCount]string{"restaurants in New York", "10", "en"}
	for i, w := range want {
		if got := m.inputs[i].Value(); got != w {
			t.Errorf("input %d = %q, want %q", i, got, w)
		}
	}
	if m.focus != fieldQuery || !m.inputs[fieldQuery].Focused() {
		t.Error("expected query field to be focused")
	}
	if m.Running() {
		t.Error("expected idle model")
	}
}

func TestRequest_Depth(t *testing.T) {
	tests := []struct {
		name  string
		depth string
		want  int
	}{
		{name: "number", depth: "25", want: 25},
		{name: "minimum", depth: "1", want: 1},
		{name: "zero clamps", depth: "0", want: 1},
		{name: "negative clamps", depth: "-4", want: 1},
		{name: "not a number", depth: "deep", want: 10},
		{name: "empty", depth: "", want: 10},
		{name: "spaces", depth: " 7 ", want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(&fakeActions{}, models.ScrapeRequest{})
			m.inputs[fieldDepth].SetValue(tt.depth)
			if got := m.Request().Depth; got != tt.want {
				t.Errorf("Depth = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRequest_ClearedFieldsStayEmpty(t *testing.T) {
	m := newTestModel(&fakeActions{}, models.ScrapeRequest{})
	m.inputs[fieldQuery].SetValue("   ")
	m.inputs[fieldLang].SetValue("")

	req := m.Request()
	if req.Query != "" || req.Lang != "" {
		t.Errorf("Request() = %+v, want cleared query and lang", req)
	}
	if req.Depth != models.DefaultDepth {
		t.Errorf("Depth = %d, want %d", req.Depth, models.DefaultDepth)
	}
}

func TestUpdate_FocusCycles(t *testing.T) {
	m := newTestModel(&fakeActions{}, models.ScrapeRequest{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != fieldDepth || !m.inputs[fieldDepth].Focused() || m.inputs[fieldQuery].Focused() {
		t.Errorf("after tab focus = %d", m.focus)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.focus != fieldLang {
		t.Errorf("shift+tab should wrap to the last field, focus = %d", m.focus)
	}
}

func TestUpdate_EnterStartsScrape(t *testing.T) {
	fake := &fakeActions{scrape: &models.ScrapeResponse{Success: true, Status: models.StatusCompleted}}
	m := newTestModel(fake, models.ScrapeRequest{Query: "bars in Lisbon", Depth: 3, Lang: "pt"})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command to run the scrape")
	}
	if !m.Running() {
		t.Fatal("expected model to be running")
	}
	if !strings.Contains(m.View(), `Scraping "bars in Lisbon"`) {
		t.Errorf("expected progress line, got: %s", m.View())
	}

	// A second enter while running is ignored.
	if _, again := update(t, m, tea.KeyMsg{Type: tea.KeyEnter}); again != nil {
		t.Error("expected no command while an action is running")
	}
}

func TestScrapeCmd_PassesRequest(t *testing.T) {
	fake := &fakeActions{scrape: &models.ScrapeResponse{Success: true}}
	req := models.ScrapeRequest{Query: "q", Depth: 2, Lang: "de"}

	msg := scrapeCmd(context.Background(), fake, req)()
	done, ok := msg.(ScrapeDoneMsg)
	if !ok {
		t.Fatalf("msg = %T, want ScrapeDoneMsg", msg)
	}
	if fake.got != req {
		t.Errorf("Scrape got %+v, want %+v", fake.got, req)
	}
	if done.Resp != fake.scrape {
		t.Error("expected response to be forwarded")
	}
}

func TestToolCmds(t *testing.T) {
	fake := &fakeActions{tool: &models.ToolResponse{Success: true, Action: "build", Message: "ok"}}
	for _, cmd := range []tea.Cmd{buildCmd(context.Background(), fake), makeExecutableCmd(context.Background(), fake)} {
		done, ok := cmd().(ToolDoneMsg)
		if !ok || done.Resp != fake.tool {
			t.Errorf("unexpected tool msg %+v", done)
		}
	}
}

func TestUpdate_ScrapeDoneMsg(t *testing.T) {
	m := newTestModel(&fakeActions{}, models.ScrapeRequest{})
	m.running = "Scraping"

	resp := &models.ScrapeResponse{
		Success: true,
		Status:  models.StatusCompleted,
		Records: []json.RawMessage{json.RawMessage(`{"title":"Katz's Delicatessen","category":"Deli","review_rating":4.5}`)},
		Total:   1,
	}
	m, _ = update(t, m, ScrapeDoneMsg{Resp: resp})

	if m.Running() {
		t.Error("expected idle after ScrapeDoneMsg")
	}
	if m.LastScrape() != resp {
		t.Error("expected response to be stored")
	}
	out := m.View()
	if !strings.Contains(out, "Katz's Delicatessen") || !strings.Contains(out, "4.5") {
		t.Errorf("expected record in view, got: %s", out)
	}
}

func TestUpdate_CtrlCQuits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewModel(ctx, cancel, &fakeActions{}, models.ScrapeRequest{})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if ctx.Err() == nil {
		t.Error("expected context to be cancelled")
	}
	if m.View() != "" {
		t.Error("expected empty view after quitting")
	}
}

func TestRenderScrape_NoResults(t *testing.T) {
	out := RenderScrape(&models.ScrapeResponse{
		Success: true,
		Status:  models.StatusNoResults,
		Message: models.NoResultsMessage,
	})
	if !strings.Contains(out, "no results were written") {
		t.Errorf("expected no-results warning, got: %s", out)
	}
}

func TestRenderScrape_Error(t *testing.T) {
	code := 2
	out := RenderScrape(&models.ScrapeResponse{
		Status: models.StatusFailed,
		Error: &models.ErrorDetail{
			Code:     models.ErrCodeScraperFailed,
			Message:  "scraping failed with error code 2",
			ExitCode: &code,
			Stderr:   "panic: browser not found\n",
		},
	})
	if !strings.Contains(out, "error code 2") || !strings.Contains(out, "browser not found") {
		t.Errorf("expected message and stderr, got: %s", out)
	}
}

func TestRenderScrape_Nil(t *testing.T) {
	if RenderScrape(nil) == "" {
		t.Error("expected non-empty output for nil response")
	}
}

func TestRecordsTable_KeepsOrder(t *testing.T) {
	out := RecordsTable([]json.RawMessage{
		json.RawMessage(`{"title":"First"}`),
		json.RawMessage(`{"title":"Second"}`),
		json.RawMessage(`{"title":"First"}`),
	})
	first := strings.Index(out, "First")
	second := strings.Index(out, "Second")
	if first < 0 || second < first || strings.Count(out, "First") != 2 {
		t.Errorf("unexpected table:\n%s", out)
	}
}

func TestRenderTool(t *testing.T) {
	ok := RenderTool(&models.ToolResponse{Success: true, Message: "executable built successfully"})
	if !strings.Contains(ok, "built successfully") {
		t.Errorf("got: %s", ok)
	}

	failed := RenderTool(&models.ToolResponse{Error: &models.ErrorDetail{Message: "go command not found"}})
	if !strings.Contains(failed, "Error: go command not found") {
		t.Errorf("got: %s", failed)
	}
}
