package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestRunErrorFormatsIndex(t *testing.T) {
	err := NewRejection(3, 400, "syntax error")
	if !strings.Contains(err.Error(), "statement 3") {
		t.Errorf("expected statement index in message, got %q", err.Error())
	}
	if err.Retryable {
		t.Error("expected 400 to be non-retryable")
	}
	if err.Code != "HTTP_400" {
		t.Errorf("expected code HTTP_400, got %q", err.Code)
	}
}

func TestRejectionRetryableOnServerErrors(t *testing.T) {
	for _, status := range []int{429, 500, 503} {
		if !NewRejection(1, status, "").Retryable {
			t.Errorf("expected status %d to be retryable", status)
		}
	}
}

func TestIsSourceThroughWrapping(t *testing.T) {
	base := &RunError{Type: SourceNotFound, Message: "missing"}
	wrapped := fmt.Errorf("push: %w", base)
	if !IsSource(wrapped) {
		t.Fatal("expected wrapped source error to be detected")
	}
	if IsSource(NewConfigError("bad", "")) {
		t.Error("config error must not be treated as source error")
	}
}

func TestTransportErrorUnwraps(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewTransportError(2, cause)
	if err.Unwrap() != cause {
		t.Error("expected Unwrap to return the cause")
	}
	if !err.Retryable {
		t.Error("expected transport errors to be retryable")
	}
}
