package invoker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/use-agent/mapsrun/models"
)

// BuildArgs is the build tool's argument list: build -o <binary>.
func (iv *Invoker) BuildArgs() []string {
	return []string{"build", "-o", iv.cfg.BinaryName}
}

// PermissionArgs is the permission tool's argument list: +x ./<binary>.
func (iv *Invoker) PermissionArgs() []string {
	return []string{"+x", iv.relativeBinary()}
}

// Build compiles the scraper in WorkDir with the configured build tool.
//
// Fails with TOOL_NOT_FOUND when the build tool is not installed, or
// BUILD_FAILED (exit code + stderr) when it runs and reports an error.
// On success the ProcessResult carries the tool's output.
func (iv *Invoker) Build(ctx context.Context) (*models.ProcessResult, error) {
	release, err := iv.acquire("build")
	if err != nil {
		return nil, err
	}
	defer release()

	tool := iv.cfg.BuildTool
	slog.Info("building scraper executable", "tool", tool, "output", iv.BinaryPath())

	res, err := iv.execute(ctx, tool, iv.BuildArgs()...)
	if err != nil {
		return nil, launchError(err,
			fmt.Sprintf("%s command not found: make sure it is installed and in PATH", tool),
			false,
		)
	}
	if !res.Success() {
		return res, models.NewExitError(models.ErrCodeBuildFailed, tool+" build", res.ExitCode, string(res.Stderr))
	}

	slog.Info("scraper executable built", "path", iv.BinaryPath())
	return res, nil
}

// MakeExecutable sets the execute bit on the scraper binary with the
// configured permission tool.
//
// Fails with TOOL_NOT_FOUND when the tool is unavailable on this platform,
// or PERMISSION_CHANGE_FAILED (exit code + stderr) on a non-zero exit.
func (iv *Invoker) MakeExecutable(ctx context.Context) (*models.ProcessResult, error) {
	release, err := iv.acquire("make_executable")
	if err != nil {
		return nil, err
	}
	defer release()

	tool := iv.cfg.PermissionTool
	slog.Info("setting execute permission", "tool", tool, "path", iv.BinaryPath())

	res, err := iv.execute(ctx, tool, iv.PermissionArgs()...)
	if err != nil {
		return nil, launchError(err,
			fmt.Sprintf("%s command not found: this command is for Linux/Unix-like systems", tool),
			false,
		)
	}
	if !res.Success() {
		return res, models.NewExitError(models.ErrCodePermissionChangeFailed, tool, res.ExitCode, string(res.Stderr))
	}

	slog.Info("execute permission set", "path", iv.BinaryPath())
	return res, nil
}
