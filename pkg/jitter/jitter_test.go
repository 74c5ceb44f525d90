package jitter

import (
	"testing"
	"time"
)

func TestDurationBounds(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		got := Duration(base, DefaultJitter)
		if got < base || got > base+base/2 {
			t.Fatalf("Duration() = %v, want in [%v, %v]", got, base, base+base/2)
		}
	}
}

func TestExponentialBackoffCapped(t *testing.T) {
	base := time.Second
	max := 4 * time.Second

	for attempt := 0; attempt < 10; attempt++ {
		got := ExponentialBackoff(base, max, attempt, 0)
		if got > max {
			t.Fatalf("attempt %d: backoff = %v exceeds max %v", attempt, got, max)
		}
		if got < base {
			t.Fatalf("attempt %d: backoff = %v below base %v", attempt, got, base)
		}
	}

	// Нулевой джиттер делает рост детерминированным
	if got := ExponentialBackoff(base, max, 1, 0); got != 2*time.Second {
		t.Fatalf("attempt 1: backoff = %v, want 2s", got)
	}
	if got := ExponentialBackoff(base, max, 5, 0); got != max {
		t.Fatalf("attempt 5: backoff = %v, want capped at %v", got, max)
	}
}
