package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("select institution: %w", ErrNotFound)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("wrapped ErrNotFound not matched by errors.Is")
	}

	if errors.Is(wrapped, ErrUnknownAction) {
		t.Error("ErrNotFound should not match ErrUnknownAction")
	}
}

func TestUpstreamError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := NewUpstreamError("generation", cause)

	if !errors.Is(err, cause) {
		t.Error("UpstreamError does not unwrap to its cause")
	}
	if !IsUpstream(fmt.Errorf("dispatch: %w", err)) {
		t.Error("IsUpstream failed on wrapped UpstreamError")
	}
	if IsUpstream(cause) {
		t.Error("IsUpstream matched a plain error")
	}

	want := "upstream generation failure: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := NewValidationError("institution_id", "must not be empty")
	want := "validation failed on institution_id: must not be empty"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
