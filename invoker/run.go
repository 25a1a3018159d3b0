package invoker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"

	"github.com/use-agent/mapsrun/models"
)

// Concurrency is the fixed value passed to the scraper's -c flag.
const Concurrency = 1

// Args builds the scraper's argument list for req:
//
//	-input <in> -results <out> -c 1 -depth <depth> -lang <lang> -json
func Args(req *models.ScrapeRequest, inputPath, resultsPath string) []string {
	return []string{
		"-input", inputPath,
		"-results", resultsPath,
		"-c", strconv.Itoa(Concurrency),
		"-depth", strconv.Itoa(req.Depth),
		"-lang", req.Lang,
		"-json",
	}
}

// Run launches the scraper against the prepared input and results files and
// blocks until it exits.
//
// A non-zero exit is returned in the ProcessResult, not as an error; the
// caller decides what to show. Errors are EXECUTABLE_NOT_FOUND (binary
// absent or not executable), RUN_IN_PROGRESS, or INVOCATION_ERROR.
func (iv *Invoker) Run(ctx context.Context, req *models.ScrapeRequest, inputPath, resultsPath string) (*models.ProcessResult, error) {
	release, err := iv.acquire("run")
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := iv.withTimeout(ctx)
	defer cancel()

	iv.runs.Add(1)
	args := Args(req, inputPath, resultsPath)
	slog.Info("running scraper",
		"binary", iv.BinaryPath(),
		"depth", req.Depth,
		"lang", req.Lang,
	)

	res, err := iv.execute(ctx, iv.relativeBinary(), args...)
	if err != nil {
		msg := fmt.Sprintf("scraper executable not found: make sure %q is in %s", iv.cfg.BinaryName, iv.cfg.WorkDir)
		if errors.Is(err, fs.ErrPermission) {
			msg = fmt.Sprintf("scraper executable %q is not executable: run the make-executable action first", iv.cfg.BinaryName)
		}
		return nil, launchError(err, msg, true)
	}

	slog.Info("scraper exited", "exitCode", res.ExitCode, "stderrBytes", len(res.Stderr))
	return res, nil
}
