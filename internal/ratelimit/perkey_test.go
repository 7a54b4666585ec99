package ratelimit

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPerKeyLimiterIsolatesKeys(t *testing.T) {
	pkl := NewPerKeyLimiter(PerKeyLimiterConfig{
		MaxTokens:     1,
		RefillRate:    0.001,
		CleanupPeriod: time.Minute,
	})
	defer pkl.Stop()

	if !pkl.Allow("alice") {
		t.Fatal("first request for alice should be allowed")
	}
	if pkl.Allow("alice") {
		t.Error("second request for alice should be denied")
	}
	if !pkl.Allow("bob") {
		t.Error("bob should have his own bucket")
	}
}

func TestPerKeyLimiterEmptyKey(t *testing.T) {
	pkl := NewPerKeyLimiter(PerKeyLimiterConfig{
		MaxTokens:     1,
		RefillRate:    0.001,
		CleanupPeriod: time.Minute,
	})
	defer pkl.Stop()

	// Empty keys bypass limiting
	for i := 0; i < 5; i++ {
		if !pkl.Allow("") {
			t.Fatal("empty key should always be allowed")
		}
	}

	if pkl.GetActiveCount() != 0 {
		t.Error("empty key should not create a bucket")
	}
}

func TestPerKeyLimiterOnDrop(t *testing.T) {
	pkl := NewPerKeyLimiter(PerKeyLimiterConfig{
		MaxTokens:     1,
		RefillRate:    0.001,
		CleanupPeriod: time.Minute,
	})
	defer pkl.Stop()

	var drops atomic.Int32
	pkl.OnDrop(func() {
		drops.Add(1)
	})

	pkl.Allow("carol")
	pkl.Allow("carol")
	pkl.Allow("carol")

	if got := drops.Load(); got != 2 {
		t.Errorf("expected 2 drops, got %d", got)
	}
}

func TestPerKeyLimiterGetAvailable(t *testing.T) {
	pkl := NewPerKeyLimiter(PerKeyLimiterConfig{
		MaxTokens:     5,
		RefillRate:    0.001,
		CleanupPeriod: time.Minute,
	})
	defer pkl.Stop()

	if got := pkl.GetAvailable("dave"); got != 5 {
		t.Errorf("unknown key should report full capacity, got %v", got)
	}

	pkl.Allow("dave")
	pkl.Allow("dave")

	if got := pkl.GetAvailable("dave"); got > 3.5 {
		t.Errorf("expected ~3 available, got %v", got)
	}
}

func TestPerKeyLimiterCleanup(t *testing.T) {
	pkl := NewPerKeyLimiter(PerKeyLimiterConfig{
		MaxTokens:     1,
		RefillRate:    100, // refills instantly, so buckets look inactive
		CleanupPeriod: 20 * time.Millisecond,
	})
	defer pkl.Stop()

	pkl.Allow("erin")
	if pkl.GetActiveCount() != 1 {
		t.Fatal("expected 1 active bucket")
	}

	time.Sleep(100 * time.Millisecond)

	if pkl.GetActiveCount() != 0 {
		t.Error("full bucket should be cleaned up")
	}
}

func TestPerKeyLimiterStopIdempotent(t *testing.T) {
	pkl := NewPerKeyLimiter(PerKeyLimiterConfig{
		MaxTokens:     1,
		RefillRate:    1,
		CleanupPeriod: time.Minute,
	})

	pkl.Stop()
	pkl.Stop() // must not panic
}

func TestUserLimiter(t *testing.T) {
	ul := NewUserLimiter(2, 0.001, time.Minute, nil)
	defer ul.Stop()

	if !ul.Allow("user1") {
		t.Fatal("first turn should be allowed")
	}
	if !ul.Allow("user1") {
		t.Fatal("second turn should be allowed")
	}
	if ul.Allow("user1") {
		t.Error("third turn should hit the limit")
	}

	if got := ul.GetAvailable("unknown"); got != 2 {
		t.Errorf("unknown user should report burst capacity, got %v", got)
	}
	if got := ul.GetActiveCount(); got != 1 {
		t.Errorf("expected 1 active bucket, got %d", got)
	}
}
