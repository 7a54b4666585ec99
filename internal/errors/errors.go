// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a referenced institution, sub-unit or department
	// does not exist or is inactive.
	ErrNotFound = errors.New("resource not found")

	// ErrUnknownAction indicates an inbound event that no handler recognizes.
	ErrUnknownAction = errors.New("unknown action")

	// ErrIncompleteSelection indicates free-text dialogue was attempted
	// before the selection flow reached the ready state.
	ErrIncompleteSelection = errors.New("selection incomplete")

	// ErrRateLimitExceeded indicates the per-user rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")
)

// UpstreamError wraps a failure from an external collaborator (directory,
// knowledge search or generative backend). It is caught at the orchestrator
// boundary and surfaced to the affected user only.
type UpstreamError struct {
	Collaborator string // "directory", "knowledge" or "generation"
	Err          error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failure: %v", e.Collaborator, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new upstream error.
func NewUpstreamError(collaborator string, err error) *UpstreamError {
	return &UpstreamError{
		Collaborator: collaborator,
		Err:          err,
	}
}

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
