package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/use-agent/mapsrun/config"
)

// runFiles are the per-run input and results paths.
type runFiles struct {
	input   string
	results string
}

// createRunFiles allocates a fresh, uniquely named input file holding query
// and an empty results file. Both are closed before return so the scraper
// can open them. Paths are absolute because the scraper runs with the work
// directory as its cwd. On error nothing is left behind.
func createRunFiles(dir, query string) (*runFiles, error) {
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve temp dir: %w", err)
		}
		dir = abs
	}

	in, err := os.CreateTemp(dir, "mapsrun-input-*.txt")
	if err != nil {
		return nil, fmt.Errorf("create input file: %w", err)
	}
	if _, err := in.WriteString(query); err != nil {
		in.Close()
		os.Remove(in.Name())
		return nil, fmt.Errorf("write input file: %w", err)
	}
	if err := in.Close(); err != nil {
		os.Remove(in.Name())
		return nil, fmt.Errorf("close input file: %w", err)
	}

	out, err := os.CreateTemp(dir, "mapsrun-results-*.json")
	if err != nil {
		os.Remove(in.Name())
		return nil, fmt.Errorf("create results file: %w", err)
	}
	out.Close()

	return &runFiles{input: in.Name(), results: out.Name()}, nil
}

// remover deletes one path. os.Remove in production; tests inject failures.
type remover func(path string) error

// removeWithRetry deletes path, retrying up to policy.Attempts times with a
// fixed policy.Delay between attempts. A path that no longer exists counts
// as removed. It returns the number of attempts made and whether the file
// is gone; exhaustion is logged, never returned as an error.
func removeWithRetry(path string, policy config.CleanupPolicy, remove remover) (int, bool) {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		err := remove(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return i, true
		}
		lastErr = err
		if i < attempts && policy.Delay > 0 {
			time.Sleep(policy.Delay)
		}
	}

	slog.Warn("temp file cleanup abandoned",
		"path", path,
		"attempts", attempts,
		"error", lastErr,
	)
	return attempts, false
}

// cleanup removes both run files. It never fails the run.
func (f *runFiles) cleanup(policy config.CleanupPolicy, remove remover) {
	for _, p := range []string{f.input, f.results} {
		if n, ok := removeWithRetry(p, policy, remove); ok && n > 1 {
			slog.Debug("temp file removed after retries", "path", p, "attempts", n)
		}
	}
}
