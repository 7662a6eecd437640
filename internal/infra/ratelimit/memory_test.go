package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(MemoryLimiterConfig{Now: func() time.Time { return now }})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		decision, err := limiter.Allow(ctx, "client:a", 2, time.Minute)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !decision.Allowed {
			t.Fatalf("request %d denied within limit", i+1)
		}
	}

	decision, err := limiter.Allow(ctx, "client:a", 2, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("third request must be denied")
	}
	if !decision.ResetAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("reset at = %v", decision.ResetAt)
	}

	// A different key has its own window.
	other, err := limiter.Allow(ctx, "client:b", 2, time.Minute)
	if err != nil || !other.Allowed {
		t.Fatalf("independent key denied: %v %v", other, err)
	}

	// The window expires.
	now = now.Add(2 * time.Minute)
	decision, err = limiter.Allow(ctx, "client:a", 2, time.Minute)
	if err != nil || !decision.Allowed {
		t.Fatalf("request after window expiry denied: %v %v", decision, err)
	}
}

func TestMemoryLimiter_ZeroLimitDisables(t *testing.T) {
	limiter := NewMemoryLimiter(MemoryLimiterConfig{})
	decision, err := limiter.Allow(context.Background(), "client:a", 0, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("zero limit must disable limiting")
	}
}
