package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/mapsrun/config"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func get(r *gin.Engine, key string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_PerIdentity(t *testing.T) {
	r := newEngine(Auth([]string{"a", "b"}), RateLimit(config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}))

	if code := get(r, "a"); code != http.StatusNoContent {
		t.Fatalf("first request = %d", code)
	}
	if code := get(r, "a"); code != http.StatusTooManyRequests {
		t.Errorf("second request for the same key = %d, want 429", code)
	}
	if code := get(r, "b"); code != http.StatusNoContent {
		t.Errorf("other key should have its own bucket, got %d", code)
	}
}

func TestAuth_EmptyKeysIsOpen(t *testing.T) {
	r := newEngine(Auth([]string{""}))
	if code := get(r, ""); code != http.StatusNoContent {
		t.Errorf("open access = %d", code)
	}
}

func TestLimiterSet_Sweep(t *testing.T) {
	set := newLimiterSet(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	now := time.Now()
	set.get("old", now.Add(-2*time.Hour))
	set.get("new", now)

	set.sweep(now.Add(-limiterIdleTTL))

	if _, ok := set.entries["old"]; ok {
		t.Error("idle identity was not evicted")
	}
	if _, ok := set.entries["new"]; !ok {
		t.Error("active identity was evicted")
	}
}
