package genai

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorAction
	}{
		{"nil", nil, ActionFail},
		{"canceled", context.Canceled, ActionFail},
		{"deadline", context.DeadlineExceeded, ActionRetry},
		{"quota", errors.New("quota exceeded for project"), ActionFallback},
		{"daily limit", errors.New("daily limit reached"), ActionFallback},
		{"rate limit", errors.New("429 too many requests"), ActionRetry},
		{"resource exhausted", errors.New("RESOURCE_EXHAUSTED"), ActionRetry},
		{"unavailable", errors.New("service unavailable (503)"), ActionRetry},
		{"overloaded", errors.New("model is overloaded"), ActionRetry},
		{"timeout", errors.New("connection timeout"), ActionRetry},
		{"bad request", errors.New("400 bad request"), ActionFail},
		{"unauthorized", errors.New("401 unauthorized"), ActionFail},
		{"invalid key", errors.New("invalid api key"), ActionFail},
		{"forbidden", errors.New("403 forbidden"), ActionFail},
		{"not found", errors.New("model not found"), ActionFail},
		{"unprocessable", errors.New("422 unprocessable entity"), ActionFail},
		{"unknown", errors.New("something odd happened"), ActionRetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyWrappedLLMError(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorAction
	}{
		{429, ActionRetry},
		{408, ActionRetry},
		{409, ActionRetry},
		{500, ActionRetry},
		{503, ActionRetry},
		{400, ActionFail},
		{401, ActionFail},
		{403, ActionFail},
		{404, ActionFail},
		{422, ActionFail},
	}

	for _, tt := range tests {
		err := WrapError(errors.New("upstream error"), ProviderGroq, tt.status)
		if got := ClassifyError(err); got != tt.want {
			t.Errorf("status %d: got %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestClassifyWrappedAndRewrapped(t *testing.T) {
	inner := WrapError(errors.New("boom"), ProviderGemini, 503)
	outer := fmt.Errorf("generate content failed: %w", inner)

	if got := ClassifyError(outer); got != ActionRetry {
		t.Errorf("wrapped 503 should be retryable, got %v", got)
	}
}

func TestLLMErrorMessageAndUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := WrapError(base, ProviderGroq, 500)

	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to the base error")
	}
	if err.Error() != "boom (status: 500)" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestIsRetryableAndIsPermanent(t *testing.T) {
	if !IsRetryable(errors.New("503 service unavailable")) {
		t.Error("503 should be retryable")
	}
	if !IsPermanent(errors.New("401 unauthorized")) {
		t.Error("401 should be permanent")
	}
	if IsPermanent(errors.New("overloaded")) {
		t.Error("overloaded should not be permanent")
	}
}

func TestErrorActionString(t *testing.T) {
	if ActionRetry.String() != "retry" || ActionFallback.String() != "fallback" || ActionFail.String() != "fail" {
		t.Error("unexpected action strings")
	}
	if ErrorAction(99).String() != "unknown" {
		t.Error("out-of-range action should be unknown")
	}
}
