package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeToolNotFound           = "TOOL_NOT_FOUND"
	ErrCodeExecutableNotFound     = "EXECUTABLE_NOT_FOUND"
	ErrCodeBuildFailed            = "BUILD_FAILED"
	ErrCodePermissionChangeFailed = "PERMISSION_CHANGE_FAILED"
	ErrCodeScraperFailed          = "SCRAPER_FAILED"
	ErrCodeInvocation             = "INVOCATION_ERROR"
	ErrCodeResultParse            = "RESULT_PARSE_ERROR"
	ErrCodeBusy                   = "RUN_IN_PROGRESS"
	ErrCodeInvalidInput           = "INVALID_INPUT"
	ErrCodeRateLimited            = "RATE_LIMITED"
	ErrCodeUnauthorized           = "UNAUTHORIZED"
	ErrCodeInternal               = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// ExitCode is set when an external process ran and exited non-zero.
	ExitCode *int `json:"exit_code,omitempty"`

	// Stderr is the full captured error stream of the failed process.
	Stderr string `json:"stderr,omitempty"`

	// Raw is the unparsed results file content on RESULT_PARSE_ERROR.
	Raw string `json:"raw,omitempty"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code     string
	Message  string
	ExitCode *int
	Stderr   string
	Raw      string
	Err      error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// NewExitError creates a ScrapeError for a process that ran and exited with
// a non-zero status. The message always names the exit code.
func NewExitError(code, what string, exitCode int, stderr string) *ScrapeError {
	ec := exitCode
	return &ScrapeError{
		Code:     code,
		Message:  fmt.Sprintf("%s failed with error code %d", what, exitCode),
		ExitCode: &ec,
		Stderr:   stderr,
	}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{
		Code:     e.Code,
		Message:  e.Message,
		ExitCode: e.ExitCode,
		Stderr:   e.Stderr,
		Raw:      e.Raw,
	}
}

// AsScrapeError returns err as a *ScrapeError, wrapping foreign errors as
// INTERNAL_ERROR.
func AsScrapeError(err error) *ScrapeError {
	if se, ok := err.(*ScrapeError); ok {
		return se
	}
	return NewScrapeError(ErrCodeInternal, err.Error(), err)
}

// ErrorResponse is the body of requests rejected before any action ran
// (bad input, auth, rate limiting).
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}
