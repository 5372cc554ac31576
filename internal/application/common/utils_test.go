package common

import (
	"context"
	"testing"
	"time"
)

func TestNextBackoffWithJitterBounds(t *testing.T) {
	for attempts := 0; attempts < 40; attempts++ {
		got := NextBackoffWithJitter(attempts)
		if got < 500*time.Millisecond {
			t.Fatalf("attempt %d: backoff %v below half-second floor", attempts, got)
		}
		if got > 30*time.Minute {
			t.Fatalf("attempt %d: backoff %v above 30m cap", attempts, got)
		}
	}

	if got := NextBackoffWithJitter(-5); got < 500*time.Millisecond || got > time.Second {
		t.Errorf("negative attempts: backoff %v, want within first-attempt range", got)
	}
}

func TestSleepCtxCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SleepCtx(ctx, time.Minute); err != context.Canceled {
		t.Fatalf("SleepCtx on cancelled context = %v, want context.Canceled", err)
	}

	if err := SleepCtx(context.Background(), 0); err != nil {
		t.Fatalf("SleepCtx(0) = %v, want nil", err)
	}
}

func TestPgInterval(t *testing.T) {
	if got := PgInterval(90 * time.Second); got != "90 seconds" {
		t.Errorf("PgInterval = %q, want %q", got, "90 seconds")
	}
}
