package errors

import (
	stderrors "errors"
	"fmt"
)

// Error type constants
const (
	SourceNotFound   = "SOURCE_NOT_FOUND"
	SourceUnreadable = "SOURCE_UNREADABLE"
	TransportError   = "TRANSPORT_ERROR"
	RemoteRejection  = "REMOTE_REJECTION"
	ConfigError      = "CONFIG_ERROR"
	ProbeFailed      = "PROBE_FAILED"
)

// RunError is a structured error for operators and agents.
type RunError struct {
	Type       string `json:"type"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Index      int    `json:"index,omitempty"` // 1-based statement position
	StatusCode int    `json:"status_code,omitempty"`
	Retryable  bool   `json:"retryable"`
	Hint       string `json:"hint,omitempty"`
	Err        error  `json:"-"`
}

func (e *RunError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("[%s] statement %d: %s", e.Type, e.Index, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// IsSource reports whether err is a fatal source loading error.
func IsSource(err error) bool {
	re, ok := As(err)
	return ok && (re.Type == SourceNotFound || re.Type == SourceUnreadable)
}

// As returns the RunError wrapped anywhere in err's chain.
func As(err error) (*RunError, bool) {
	var re *RunError
	if stderrors.As(err, &re) {
		return re, true
	}
	return nil, false
}

func NewConfigError(msg, hint string) *RunError {
	return &RunError{Type: ConfigError, Message: msg, Hint: hint}
}

func NewTransportError(index int, err error) *RunError {
	return &RunError{
		Type:      TransportError,
		Index:     index,
		Message:   err.Error(),
		Retryable: true,
		Hint:      "Check network access to the endpoint and re-run the failed statement",
		Err:       err,
	}
}

func NewRejection(index, status int, body string) *RunError {
	return &RunError{
		Type:       RemoteRejection,
		Code:       fmt.Sprintf("HTTP_%d", status),
		Index:      index,
		StatusCode: status,
		Message:    fmt.Sprintf("remote returned %d: %s", status, body),
		Retryable:  status == 429 || status >= 500,
		Hint:       "Fix the statement and apply it manually, or re-run with the failed subset",
	}
}
