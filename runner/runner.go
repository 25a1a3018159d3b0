package runner

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/use-agent/mapsrun/config"
	"github.com/use-agent/mapsrun/invoker"
	"github.com/use-agent/mapsrun/models"
	"github.com/use-agent/mapsrun/relay"
)

// Runner ties the invoker and the result relay into the three user actions.
// Every action returns a response value; failures are reported in it, never
// raised.
type Runner struct {
	iv       *invoker.Invoker
	tempDir  string
	cleanup  config.CleanupPolicy
	remove   remover
	observer Observer
}

// New creates a Runner around iv using iv's temp-dir and cleanup settings.
func New(iv *invoker.Invoker) *Runner {
	cfg := iv.Config()
	return &Runner{
		iv:      iv,
		tempDir: cfg.TempDir,
		cleanup: cfg.Cleanup,
		remove:  os.Remove,
	}
}

// SetObserver registers a callback for run state transitions.
func (r *Runner) SetObserver(o Observer) {
	r.observer = o
}

// Invoker returns the underlying invoker.
func (r *Runner) Invoker() *invoker.Invoker {
	return r.iv
}

// run tracks one Scrape call through the state machine.
type run struct {
	r     *Runner
	state State
	resp  *models.ScrapeResponse
}

func (x *run) to(next State) {
	prev := x.state
	x.state = next
	slog.Debug("run state", "from", prev, "to", next, "query", x.resp.Request.Query)
	if x.r.observer != nil {
		x.r.observer(prev, next)
	}
}

func (x *run) fail(err error) *models.ScrapeResponse {
	se := models.AsScrapeError(err)
	x.resp.Success = false
	x.resp.Status = models.StatusFailed
	x.resp.Error = se.ToDetail()
	if se.Code == models.ErrCodeResultParse {
		x.to(StateParseFailed)
	} else {
		x.to(StateFailed)
	}
	return x.resp
}

// Scrape runs the scraper once for req and relays its results.
//
// Input and results files are created fresh for the run and removed on
// every exit path. A non-zero exit surfaces the exit code and full stderr
// without reading the results file. An empty results file is a successful
// "no_results" outcome.
func (r *Runner) Scrape(ctx context.Context, req models.ScrapeRequest) *models.ScrapeResponse {
	totalStart := time.Now()
	req.Clamp()

	x := &run{
		r:     r,
		state: StateIdle,
		resp: &models.ScrapeResponse{
			Request: req,
			Records: []json.RawMessage{},
		},
	}
	defer func() {
		x.resp.Timing.TotalMs = time.Since(totalStart).Milliseconds()
	}()

	files, err := createRunFiles(r.tempDir, req.Query)
	if err != nil {
		return x.fail(models.NewScrapeError(models.ErrCodeInvocation, "failed to prepare temp files", err))
	}
	defer func() {
		files.cleanup(r.cleanup, r.remove)
		x.to(StateIdle)
	}()

	// ── Invoke ──────────────────────────────────────────────────────
	x.to(StateInvoking)
	invokeStart := time.Now()
	res, err := r.iv.Run(ctx, &req, files.input, files.results)
	x.resp.Timing.InvokeMs = time.Since(invokeStart).Milliseconds()
	if err != nil {
		return x.fail(err)
	}

	exitCode := res.ExitCode
	x.resp.ExitCode = &exitCode
	if !res.Success() {
		return x.fail(models.NewExitError(models.ErrCodeScraperFailed, "scraping", exitCode, string(res.Stderr)))
	}
	x.to(StateSucceeded)

	// ── Relay ───────────────────────────────────────────────────────
	x.to(StateParsing)
	parseStart := time.Now()
	parsed, err := relay.ReadFile(files.results)
	x.resp.Timing.ParseMs = time.Since(parseStart).Milliseconds()
	if err != nil {
		return x.fail(err)
	}

	x.resp.Success = true
	x.resp.Records = parsed.Records
	x.resp.Total = len(parsed.Records)
	if parsed.Empty {
		x.resp.Status = models.StatusNoResults
		x.resp.Message = models.NoResultsMessage
		x.to(StateNoResults)
	} else {
		x.resp.Status = models.StatusCompleted
		x.to(StateRendered)
	}

	slog.Info("scrape finished",
		"query", req.Query,
		"status", x.resp.Status,
		"records", x.resp.Total,
	)
	return x.resp
}

// Build runs the build action.
func (r *Runner) Build(ctx context.Context) *models.ToolResponse {
	return toolResponse("build", "scraper executable built successfully", func() (*models.ProcessResult, error) {
		return r.iv.Build(ctx)
	})
}

// MakeExecutable runs the permission action.
func (r *Runner) MakeExecutable(ctx context.Context) *models.ToolResponse {
	return toolResponse("make_executable", "executable permissions set successfully", func() (*models.ProcessResult, error) {
		return r.iv.MakeExecutable(ctx)
	})
}

func toolResponse(action, okMsg string, do func() (*models.ProcessResult, error)) *models.ToolResponse {
	start := time.Now()
	res, err := do()

	resp := &models.ToolResponse{Action: action}
	resp.Timing.TotalMs = time.Since(start).Milliseconds()
	resp.Timing.InvokeMs = resp.Timing.TotalMs
	if res != nil {
		code := res.ExitCode
		resp.ExitCode = &code
		resp.Stderr = string(res.Stderr)
	}

	if err != nil {
		se := models.AsScrapeError(err)
		resp.Error = se.ToDetail()
		resp.Message = se.Message
		slog.Warn("action failed", "action", action, "code", se.Code, "error", err)
		return resp
	}

	resp.Success = true
	resp.Message = okMsg
	return resp
}
