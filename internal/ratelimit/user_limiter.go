package ratelimit

import (
	"time"

	"github.com/nbenali/campusbot-go/internal/metrics"
)

// UserLimiter throttles generative answers per user.
// Deterministic catalog replies stay unthrottled; only turns that reach
// the language model consume tokens, since those are the expensive ones.
type UserLimiter struct {
	pkl       *PerKeyLimiter
	maxTokens float64
}

// NewUserLimiter creates a per-user limiter for generative turns.
//
// Parameters:
//   - burst: maximum tokens per user (burst capacity)
//   - refillPerSec: tokens refilled per second (e.g., 0.2 = 1 turn per 5 seconds)
//   - cleanup: how often inactive user buckets are removed
//   - m: optional metrics reporter for drops and active bucket count
//
// Remember to call Stop() when done.
func NewUserLimiter(burst, refillPerSec float64, cleanup time.Duration, m *metrics.Metrics) *UserLimiter {
	ul := &UserLimiter{
		maxTokens: burst,
	}

	ul.pkl = NewPerKeyLimiter(PerKeyLimiterConfig{
		MaxTokens:     burst,
		RefillRate:    refillPerSec,
		CleanupPeriod: cleanup,
	})

	if m != nil {
		ul.pkl.OnDrop(func() {
			m.RecordRateLimiterDrop("user")
		})
		ul.pkl.OnUpdate(func(count int) {
			m.SetActiveUserLimiters(count)
		})
	}

	return ul
}

// Allow checks if a generative turn from userID is allowed.
// Returns true if allowed (token consumed), false if rate limit exceeded.
func (ul *UserLimiter) Allow(userID string) bool {
	return ul.pkl.Allow(userID)
}

// GetAvailable returns the remaining tokens for a user.
// Returns the burst capacity if the user has no bucket yet.
func (ul *UserLimiter) GetAvailable(userID string) float64 {
	if userID == "" {
		return ul.maxTokens
	}
	return ul.pkl.GetAvailable(userID)
}

// GetActiveCount returns the current number of active user buckets.
func (ul *UserLimiter) GetActiveCount() int {
	return ul.pkl.GetActiveCount()
}

// Stop gracefully stops the cleanup goroutine.
// Safe to call multiple times.
func (ul *UserLimiter) Stop() {
	ul.pkl.Stop()
}
