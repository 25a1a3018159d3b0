package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/mapsrun/cache"
	"github.com/use-agent/mapsrun/config"
	"github.com/use-agent/mapsrun/invoker"
	"github.com/use-agent/mapsrun/models"
	"github.com/use-agent/mapsrun/runner"
)

const twoRecordScraper = `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-results" ]; then out="$2"; fi
  shift
done
printf '{"title":"A"}\n{"title":"B"}\n' > "$out"
`

type testServer struct {
	engine  *gin.Engine
	workDir string
}

type serverOption func(*config.Config, *config.RunnerConfig)

func withAPIKeys(keys ...string) serverOption {
	return func(c *config.Config, _ *config.RunnerConfig) {
		c.Auth = config.AuthConfig{Enabled: true, APIKeys: keys}
	}
}

func withBuildTool(tool string) serverOption {
	return func(_ *config.Config, rc *config.RunnerConfig) {
		rc.BuildTool = tool
	}
}

func newTestServer(t *testing.T, script string, opts ...serverOption) *testServer {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake binaries are /bin/sh scripts")
	}

	workDir := t.TempDir()
	if script != "" {
		require.NoError(t, os.WriteFile(filepath.Join(workDir, "google-maps-scraper"), []byte(script), 0o755))
	}

	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
	rc := config.RunnerConfig{
		WorkDir:        workDir,
		BinaryName:     "google-maps-scraper",
		BuildTool:      "go",
		PermissionTool: "chmod",
		TempDir:        t.TempDir(),
		Cleanup:        config.CleanupPolicy{Attempts: 3, Delay: time.Millisecond},
	}
	for _, o := range opts {
		o(cfg, &rc)
	}

	rn := runner.New(invoker.New(rc))
	return &testServer{
		engine:  NewRouter(rn, cfg, cache.New(10), time.Now()),
		workDir: workDir,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestForm_RendersDefaults(t *testing.T) {
	s := newTestServer(t, "")
	w := s.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)

	query, _ := doc.Find("input#query").Attr("value")
	assert.Equal(t, "restaurants in New York", query)

	depth := doc.Find("input#depth")
	v, _ := depth.Attr("value")
	assert.Equal(t, "10", v)
	minAttr, _ := depth.Attr("min")
	assert.Equal(t, "1", minAttr)

	lang, _ := doc.Find("input#lang").Attr("value")
	assert.Equal(t, "en", lang)

	assert.Equal(t, "Start Scraping", doc.Find("button#start").Text())
	assert.Equal(t, "Build executable", doc.Find("button#build").Text())
	assert.Equal(t, "Make executable", doc.Find("button#chmod").Text())
}

func TestHealth(t *testing.T) {
	missing := newTestServer(t, "")
	resp := decode[models.HealthResponse](t, missing.do(t, http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, "degraded", resp.Status)
	assert.False(t, resp.InvokerStat.BinaryExists)

	ready := newTestServer(t, twoRecordScraper)
	resp = decode[models.HealthResponse](t, ready.do(t, http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, "healthy", resp.Status)
	assert.True(t, resp.InvokerStat.Executable)
}

func TestScrape_Success(t *testing.T) {
	s := newTestServer(t, twoRecordScraper)
	w := s.do(t, http.MethodPost, "/api/v1/scrape", models.ScrapeRequest{Query: "pizza", Depth: 3, Lang: "de"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.ScrapeResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, models.StatusCompleted, resp.Status)
	assert.Equal(t, 2, resp.Total)
	assert.JSONEq(t, `{"title":"A"}`, string(resp.Records[0]))
	assert.Equal(t, "pizza", resp.Request.Query)
}

func TestScrape_EmptyBodyUsesDefaults(t *testing.T) {
	s := newTestServer(t, twoRecordScraper)
	w := s.do(t, http.MethodPost, "/api/v1/scrape", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.ScrapeResponse](t, w)
	assert.Equal(t, models.NewScrapeRequest(), resp.Request)
}

func TestScrape_ClearedQueryIsSentAsIs(t *testing.T) {
	s := newTestServer(t, twoRecordScraper)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", bytes.NewBufferString(`{"query":"","depth":4}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.ScrapeResponse](t, w)
	assert.Equal(t, models.ScrapeRequest{Query: "", Depth: 4, Lang: "en"}, resp.Request)
}

func TestScrape_InvalidJSON(t *testing.T) {
	s := newTestServer(t, twoRecordScraper)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[models.ErrorResponse](t, w)
	assert.Equal(t, models.ErrCodeInvalidInput, resp.Error.Code)
}

func TestScrape_ExecutableMissing(t *testing.T) {
	s := newTestServer(t, "")
	w := s.do(t, http.MethodPost, "/api/v1/scrape", nil)
	require.Equal(t, http.StatusFailedDependency, w.Code)

	resp := decode[models.ScrapeResponse](t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, models.ErrCodeExecutableNotFound, resp.Error.Code)
}

func TestScrape_CacheHit(t *testing.T) {
	s := newTestServer(t, twoRecordScraper)
	body := models.ScrapeRequest{Query: "tacos", MaxAge: 60_000}

	first := decode[models.ScrapeResponse](t, s.do(t, http.MethodPost, "/api/v1/scrape", body))
	assert.Equal(t, "miss", first.CacheStatus)

	// A hit must not touch the binary.
	require.NoError(t, os.Remove(filepath.Join(s.workDir, "google-maps-scraper")))

	second := decode[models.ScrapeResponse](t, s.do(t, http.MethodPost, "/api/v1/scrape", body))
	assert.Equal(t, "hit", second.CacheStatus)
	assert.Equal(t, 2, second.Total)
}

func TestScrapeAsync_Poll(t *testing.T) {
	s := newTestServer(t, twoRecordScraper)
	w := s.do(t, http.MethodPost, "/api/v1/scrape/async", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	job := decode[models.JobResponse](t, w)
	require.NotEmpty(t, job.ID)

	var status models.JobStatusResponse
	require.Eventually(t, func() bool {
		status = decode[models.JobStatusResponse](t, s.do(t, http.MethodGet, "/api/v1/scrape/"+job.ID, nil))
		return status.Status != "processing"
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, models.StatusCompleted, status.Status)
	require.NotNil(t, status.Result)
	assert.Equal(t, 2, status.Result.Total)
}

func TestScrapeJob_NotFound(t *testing.T) {
	s := newTestServer(t, "")
	w := s.do(t, http.MethodGet, "/api/v1/scrape/run-nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBuild_ToolNotFound(t *testing.T) {
	s := newTestServer(t, "", withBuildTool("mapsrun-no-such-compiler"))
	w := s.do(t, http.MethodPost, "/api/v1/build", nil)
	require.Equal(t, http.StatusFailedDependency, w.Code)

	resp := decode[models.ToolResponse](t, w)
	assert.Equal(t, models.ErrCodeToolNotFound, resp.Error.Code)
}

func TestMakeExecutable(t *testing.T) {
	s := newTestServer(t, twoRecordScraper)
	path := filepath.Join(s.workDir, "google-maps-scraper")
	require.NoError(t, os.Chmod(path, 0o644))

	w := s.do(t, http.MethodPost, "/api/v1/make-executable", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o100)
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, twoRecordScraper, withAPIKeys("k1"))

	w := s.do(t, http.MethodPost, "/api/v1/scrape", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/scrape", nil, "X-API-Key", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/scrape", nil, "Authorization", "Bearer k1")
	assert.Equal(t, http.StatusOK, w.Code)

	// Health and the form stay open.
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/health", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/", nil).Code)
}
