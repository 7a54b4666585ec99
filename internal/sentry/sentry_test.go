package sentry

import (
	"testing"
	"time"
)

func TestInitializeWithoutToken(t *testing.T) {
	if err := Initialize(Config{}); err != nil {
		t.Fatalf("missing token should disable reporting, got %v", err)
	}
	if IsEnabled() {
		t.Error("reporting should be off without a token")
	}
}

func TestInitializeRequiresHost(t *testing.T) {
	if err := Initialize(Config{Token: "tok"}); err == nil {
		t.Fatal("token without host should be rejected")
	}
}

func TestInitializeAndFlush(t *testing.T) {
	// Global SDK state; not parallel.
	err := Initialize(Config{
		Token:       "tok",
		Host:        "errors.betterstack.com",
		Environment: "test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !IsEnabled() {
		t.Error("reporting should be on after Initialize")
	}
	if !Flush(time.Second) {
		t.Error("flush with no pending events should succeed")
	}
}
