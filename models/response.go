package models

import "encoding/json"

// Run outcomes reported in ScrapeResponse.Status.
const (
	StatusCompleted = "completed"  // records parsed and returned
	StatusNoResults = "no_results" // scraper succeeded but wrote nothing
	StatusFailed    = "failed"
)

// NoResultsMessage is the informational text for an empty results file.
const NoResultsMessage = "scraping completed, but no results were written to the output file"

// ScrapeResponse is the response for POST /api/v1/scrape.
type ScrapeResponse struct {
	// Success is false only when the run failed; an empty result set is
	// still a success.
	Success bool `json:"success"`

	// Status is one of "completed", "no_results", "failed".
	Status string `json:"status"`

	// Request echoes the parameters the run was invoked with.
	Request ScrapeRequest `json:"request"`

	// Records holds one raw JSON value per non-empty results line, in file
	// order. Always non-nil on success.
	Records []json.RawMessage `json:"records"`

	// Total is len(Records).
	Total int `json:"total"`

	// Message is an informational note (e.g. the "no results" warning).
	Message string `json:"message,omitempty"`

	// ExitCode is the scraper's exit status when it ran.
	ExitCode *int `json:"exit_code,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// ToolResponse is the response for the build and make-executable actions.
type ToolResponse struct {
	Success  bool         `json:"success"`
	Action   string       `json:"action"` // "build" or "make_executable"
	Message  string       `json:"message,omitempty"`
	ExitCode *int         `json:"exit_code,omitempty"`
	Stderr   string       `json:"stderr,omitempty"`
	Timing   TimingInfo   `json:"timing"`
	Error    *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// InvokeMs is the time the external process ran.
	InvokeMs int64 `json:"invoke_ms"`

	// ParseMs is the time spent reading and parsing the results file.
	ParseMs int64 `json:"parse_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status      string      `json:"status"` // "healthy" or "degraded"
	Uptime      string      `json:"uptime"`
	InvokerStat InvokerStat `json:"invoker"`
	Version     string      `json:"version"`
}

// InvokerStat reports the state of the scraper binary and its guard.
type InvokerStat struct {
	BinaryPath   string `json:"binary_path"`
	BinaryExists bool   `json:"binary_exists"`
	Executable   bool   `json:"executable"`
	Busy         bool   `json:"busy"`
	Runs         int64  `json:"runs"`
}
