package invoker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"time"

	"github.com/use-agent/mapsrun/models"
)

// execute runs name with args in WorkDir and blocks until it exits.
//
// A process that starts and exits non-zero is not an error here: its exit
// code is reported in the ProcessResult. The error return is reserved for
// launch failures and cancellation.
func (iv *Invoker) execute(ctx context.Context, name string, args ...string) (*models.ProcessResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = iv.cfg.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	slog.Debug("process starting", "cmd", name, "args", args, "dir", cmd.Dir)
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%s: %w", name, ctxErr)
	}

	result := &models.ProcessResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		result.ExitCode = exitErr.ExitCode()
	}

	slog.Debug("process exited",
		"cmd", name,
		"exitCode", result.ExitCode,
		"stdoutBytes", len(result.Stdout),
		"stderrBytes", len(result.Stderr),
		"elapsed", elapsed,
	)
	return result, nil
}

// isMissing reports whether a launch error means the program is not there.
func isMissing(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// launchError converts a launch failure into the matching ScrapeError.
// For the scraper binary itself a missing or non-executable file is
// EXECUTABLE_NOT_FOUND; for external tools a missing program is
// TOOL_NOT_FOUND.
func launchError(err error, missingMsg string, scraperBinary bool) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeInvocation, "process cancelled before it finished", err)
	case isMissing(err):
		code := models.ErrCodeToolNotFound
		if scraperBinary {
			code = models.ErrCodeExecutableNotFound
		}
		return models.NewScrapeError(code, missingMsg, err)
	case scraperBinary && errors.Is(err, fs.ErrPermission):
		return models.NewScrapeError(models.ErrCodeExecutableNotFound, missingMsg, err)
	default:
		return models.NewScrapeError(models.ErrCodeInvocation, "failed to launch process", err)
	}
}
