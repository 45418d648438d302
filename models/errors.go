package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeNavigation        = "NAVIGATION_FAILED"
	ErrCodeNavigationTimeout = "NAVIGATION_TIMEOUT"
	ErrCodeReadyTimeout      = "READY_TIMEOUT"
	ErrCodeStructure         = "STRUCTURE_MISSING"
	ErrCodeBrowserCrash      = "BROWSER_CRASH"
	ErrCodeInternal          = "INTERNAL_ERROR"

	// Display-layer codes for the HTTP API.
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeBusy         = "EXTRACTION_BUSY"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code and the
// extraction stage that produced it.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Stage   Stage
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	prefix := e.Code
	if e.Stage != "" {
		prefix = fmt.Sprintf("%s (%s)", e.Code, e.Stage)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code string, stage Stage, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Stage: stage, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
