// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains the fallback wrapper for cross-model and
// cross-provider failover.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nbenali/campusbot-go/internal/metrics"
)

// FallbackResponder wraps an ordered chain of responders. Each entry is
// tried with retry and backoff; retryable exhaustion and quota errors
// move on to the next entry. The chain is built model-first: all models
// of the first provider, then the next provider's models.
type FallbackResponder struct {
	chain   []Responder
	retry   RetryConfig
	metrics *metrics.Metrics
}

// NewFallbackResponder creates a fallback-enabled responder over the
// given chain. The metrics instance may be nil.
func NewFallbackResponder(retry RetryConfig, m *metrics.Metrics, chain ...Responder) *FallbackResponder {
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}
	return &FallbackResponder{
		chain:   chain,
		retry:   retry,
		metrics: m,
	}
}

// Generate walks the chain until one responder succeeds. Permanent
// errors and context cancellation abort the walk immediately.
func (f *FallbackResponder) Generate(ctx context.Context, req Request) (string, error) {
	if f == nil || len(f.chain) == 0 {
		return "", errors.New("no responder configured")
	}

	var lastErr error
	for i, responder := range f.chain {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		reply, err := f.generateWithRetry(ctx, responder, req)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		action := ClassifyError(err)
		if action == ActionFail {
			return "", err
		}

		if i < len(f.chain)-1 {
			next := f.chain[i+1]
			slog.InfoContext(ctx, "falling back to next responder",
				"from_provider", responder.Provider(),
				"from_model", responder.Model(),
				"to_provider", next.Provider(),
				"to_model", next.Model(),
				"error", err)
		}
	}

	slog.ErrorContext(ctx, "all responders failed",
		"chain_size", len(f.chain),
		"error", lastErr)
	return "", fmt.Errorf("all providers failed: %w", lastErr)
}

// generateWithRetry attempts one responder with retry logic and records
// per-attempt metrics.
func (f *FallbackResponder) generateWithRetry(ctx context.Context, responder Responder, req Request) (string, error) {
	var lastErr error

	for attempt := 0; attempt < f.retry.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		start := time.Now()
		reply, err := responder.Generate(ctx, req)
		duration := time.Since(start)

		if err == nil {
			f.record(responder, "success", duration)
			return reply, nil
		}
		lastErr = err
		f.record(responder, "error", duration)

		if ClassifyError(err) != ActionRetry {
			return "", err
		}
		if attempt == f.retry.MaxAttempts-1 {
			break
		}

		backoff := CalculateBackoff(attempt+1, f.retry.InitialDelay, f.retry.MaxDelay)
		if !HasSufficientBudget(ctx, backoff) {
			return "", fmt.Errorf("timeout during retry: %w", lastErr)
		}

		slog.DebugContext(ctx, "retrying chat completion",
			"provider", responder.Provider(),
			"model", responder.Model(),
			"attempt", attempt+1,
			"backoff", backoff,
			"error", err)

		if err := Sleep(ctx, backoff); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

func (f *FallbackResponder) record(responder Responder, status string, duration time.Duration) {
	if f.metrics == nil {
		return
	}
	f.metrics.RecordLLMRequest(responder.Provider().String(), responder.Model(), status, duration.Seconds())
}

// Provider returns the primary provider type.
func (f *FallbackResponder) Provider() Provider {
	if f == nil || len(f.chain) == 0 {
		return ""
	}
	return f.chain[0].Provider()
}

// Model returns the primary model name.
func (f *FallbackResponder) Model() string {
	if f == nil || len(f.chain) == 0 {
		return ""
	}
	return f.chain[0].Model()
}

// Close closes every responder in the chain.
func (f *FallbackResponder) Close() error {
	if f == nil {
		return nil
	}

	var errs []error
	for _, responder := range f.chain {
		if err := responder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
