package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoScraper = `#!/bin/sh
here="$(dirname "$0")"
printf '%s\n' "$@" > "$here/argv.txt"
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-results" ]; then out="$2"; fi
  shift
done
printf '{"title":"A"}\n{"title":"B"}\n' > "$out"
`

// resetFlags puts every flag back to its default. rootCmd is package
// state, so values parsed by one execute call would otherwise carry over.
func resetFlags(t *testing.T) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue), f.Name)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(t)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func scraperDir(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake binaries are /bin/sh scripts")
	}
	dir := t.TempDir()
	if script != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "google-maps-scraper"), []byte(script), 0o755))
	}
	return dir
}

func TestRun_JSONLines(t *testing.T) {
	dir := scraperDir(t, echoScraper)

	stdout, _, err := execute(t, "run", "--work-dir", dir, "--query", "pizza", "--depth", "0", "--lang", "it", "--json")
	require.NoError(t, err)
	assert.Equal(t, "{\"title\":\"A\"}\n{\"title\":\"B\"}\n", stdout)

	argv, err := os.ReadFile(filepath.Join(dir, "argv.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(argv), "-depth\n1\n", "depth below the minimum is clamped")
	assert.Contains(t, string(argv), "-lang\nit\n")
}

func TestRun_MissingExecutable(t *testing.T) {
	dir := scraperDir(t, "")

	_, stderr, err := execute(t, "run", "--work-dir", dir)
	require.Error(t, err)
	assert.Equal(t, "EXECUTABLE_NOT_FOUND", err.Error())
	assert.True(t, strings.Contains(stderr, "scraper executable not found"), stderr)
}

func TestChmod(t *testing.T) {
	dir := scraperDir(t, echoScraper)
	path := filepath.Join(dir, "google-maps-scraper")
	require.NoError(t, os.Chmod(path, 0o644))

	_, _, err := execute(t, "chmod", "--work-dir", dir)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o100)
}

func TestRun_FlagsDoNotCarryOver(t *testing.T) {
	dir := scraperDir(t, echoScraper)

	_, _, err := execute(t, "run", "--work-dir", dir, "--query", "tapas", "--depth", "3", "--lang", "es", "--json")
	require.NoError(t, err)

	stdout, _, err := execute(t, "run", "--work-dir", dir)
	require.NoError(t, err)
	assert.NotContains(t, stdout, `{"title":"A"}`, "table output expected once --json is dropped")
	assert.Contains(t, stdout, "Title")

	argv, err := os.ReadFile(filepath.Join(dir, "argv.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(argv), "-depth\n10\n")
	assert.Contains(t, string(argv), "-lang\nen\n")
}
