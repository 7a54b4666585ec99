package ctxutil

import (
	"context"
	"testing"
)

func TestUserID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if got := GetUserID(ctx); got != "" {
		t.Errorf("GetUserID() on empty context = %q, want empty", got)
	}

	ctx = WithUserID(ctx, "user-42")
	if got := GetUserID(ctx); got != "user-42" {
		t.Errorf("GetUserID() = %q, want %q", got, "user-42")
	}
}

func TestChatID(t *testing.T) {
	t.Parallel()

	ctx := WithChatID(context.Background(), "chat-7")
	if got := GetChatID(ctx); got != "chat-7" {
		t.Errorf("GetChatID() = %q, want %q", got, "chat-7")
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, ok := GetRequestID(ctx); ok {
		t.Error("GetRequestID() on empty context should report not found")
	}

	ctx = WithRequestID(ctx, "req-1")
	got, ok := GetRequestID(ctx)
	if !ok || got != "req-1" {
		t.Errorf("GetRequestID() = %q, %v, want %q, true", got, ok, "req-1")
	}
}

func TestValuesDoNotCollide(t *testing.T) {
	t.Parallel()

	ctx := WithUserID(context.Background(), "u")
	ctx = WithChatID(ctx, "c")
	ctx = WithRequestID(ctx, "r")

	if GetUserID(ctx) != "u" || GetChatID(ctx) != "c" {
		t.Error("context values collided")
	}
	if rid, _ := GetRequestID(ctx); rid != "r" {
		t.Error("request ID overwritten by other keys")
	}
}
