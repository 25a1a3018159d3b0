package invoker

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/use-agent/mapsrun/config"
	"github.com/use-agent/mapsrun/models"
)

// Invoker launches the external tools that build, prepare and run the
// scraper binary. Every operation runs one process to completion and
// captures its output in full.
//
// All three operations touch the same binary path, so an Invoker admits at
// most one of them at a time; a concurrent call fails fast with
// RUN_IN_PROGRESS rather than queueing.
type Invoker struct {
	cfg       config.RunnerConfig
	busy      atomic.Bool
	runs      atomic.Int64
	startTime time.Time
}

// New creates an Invoker for the binary described by cfg.
func New(cfg config.RunnerConfig) *Invoker {
	if cfg.WorkDir == "" {
		cfg.WorkDir = "."
	}
	slog.Info("invoker ready",
		"workDir", cfg.WorkDir,
		"binary", cfg.BinaryName,
		"buildTool", cfg.BuildTool,
		"permissionTool", cfg.PermissionTool,
	)
	return &Invoker{cfg: cfg, startTime: time.Now()}
}

// Config returns the runner configuration the Invoker was built with.
func (iv *Invoker) Config() config.RunnerConfig {
	return iv.cfg
}

// BinaryPath is the on-disk location of the scraper executable.
func (iv *Invoker) BinaryPath() string {
	return filepath.Join(iv.cfg.WorkDir, iv.cfg.BinaryName)
}

// relativeBinary is how the binary is named on command lines, relative to
// WorkDir: "./google-maps-scraper".
func (iv *Invoker) relativeBinary() string {
	return "./" + iv.cfg.BinaryName
}

// Stats returns a snapshot of the binary and guard state.
func (iv *Invoker) Stats() models.InvokerStat {
	stat := models.InvokerStat{
		BinaryPath: iv.BinaryPath(),
		Busy:       iv.busy.Load(),
		Runs:       iv.runs.Load(),
	}
	if fi, err := os.Stat(stat.BinaryPath); err == nil && !fi.IsDir() {
		stat.BinaryExists = true
		stat.Executable = fi.Mode().Perm()&0o111 != 0
	}
	return stat
}

// Busy reports whether an operation is in flight.
func (iv *Invoker) Busy() bool {
	return iv.busy.Load()
}

// acquire claims the single-flight slot. The returned func releases it.
func (iv *Invoker) acquire(action string) (func(), error) {
	if !iv.busy.CompareAndSwap(false, true) {
		slog.Warn("invoker busy, rejecting action", "action", action)
		return nil, models.NewScrapeError(
			models.ErrCodeBusy,
			"another build, permission or scrape action is still running",
			nil,
		)
	}
	return func() { iv.busy.Store(false) }, nil
}

// withTimeout applies RunTimeout when configured; zero leaves ctx unbounded.
func (iv *Invoker) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if iv.cfg.RunTimeout > 0 {
		return context.WithTimeout(ctx, iv.cfg.RunTimeout)
	}
	return context.WithCancel(ctx)
}
