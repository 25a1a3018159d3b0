package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Runner    RunnerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// RunnerConfig controls how the external scraper binary is built, prepared
// and invoked.
type RunnerConfig struct {
	// WorkDir is the directory the binary is built into and run from.
	WorkDir string // default: "."

	// BinaryName is the executable produced by the build action.
	BinaryName string // default: "google-maps-scraper"

	// BuildTool is the compiler used by the build action.
	BuildTool string // default: "go"

	// PermissionTool marks the binary executable.
	PermissionTool string // default: "chmod"

	// TempDir is where per-run input and results files are created.
	// Empty means the OS temp dir.
	TempDir string

	// RunTimeout bounds a single scraper run. Zero waits for as long as the
	// process takes.
	RunTimeout time.Duration // default: 0

	// Cleanup is the retry policy for removing per-run temp files.
	Cleanup CleanupPolicy
}

// CleanupPolicy bounds the temp-file removal retry loop.
type CleanupPolicy struct {
	// Attempts is the maximum number of removal attempts per file.
	Attempts int // default: 5

	// Delay is the fixed pause between attempts.
	Delay time.Duration // default: 100ms
}

// CacheConfig controls the run response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 100
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys. Empty means open access.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// SlogLevel maps Level to a slog level; unknown values mean info.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Handler returns a text or JSON slog handler writing to w.
func (l LogConfig) Handler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l.Format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("MAPSRUN_HOST", "0.0.0.0"),
			Port: envIntOr("MAPSRUN_PORT", 8080),
			Mode: envOr("MAPSRUN_MODE", "release"),
		},
		Runner: LoadRunner(),
		Auth: AuthConfig{
			Enabled: envBoolOr("MAPSRUN_AUTH_ENABLED", true),
			APIKeys: envSliceOr("MAPSRUN_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("MAPSRUN_RATE_RPS", 5.0),
			Burst:             envIntOr("MAPSRUN_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("MAPSRUN_CACHE_MAX_ENTRIES", 100),
		},
		Log: LogConfig{
			Level:  envOr("MAPSRUN_LOG_LEVEL", "info"),
			Format: envOr("MAPSRUN_LOG_FORMAT", "json"),
		},
	}
}

// LoadRunner reads only the runner section. The CLI uses it directly since it
// never starts the HTTP server.
func LoadRunner() RunnerConfig {
	return RunnerConfig{
		WorkDir:        envOr("MAPSRUN_WORK_DIR", "."),
		BinaryName:     envOr("MAPSRUN_BINARY_NAME", "google-maps-scraper"),
		BuildTool:      envOr("MAPSRUN_BUILD_TOOL", "go"),
		PermissionTool: envOr("MAPSRUN_PERMISSION_TOOL", "chmod"),
		TempDir:        os.Getenv("MAPSRUN_TEMP_DIR"),
		RunTimeout:     envDurationOr("MAPSRUN_RUN_TIMEOUT", 0),
		Cleanup: CleanupPolicy{
			Attempts: envIntOr("MAPSRUN_CLEANUP_ATTEMPTS", 5),
			Delay:    envDurationOr("MAPSRUN_CLEANUP_DELAY", 100*time.Millisecond),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
