package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForElapses(t *testing.T) {
	t.Parallel()

	start := time.Now()
	if err := WaitFor(context.Background(), 5*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Fatalf("returned too early after %s", elapsed)
	}
}

func TestWaitForCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := WaitFor(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("wait was not cut short: %s", elapsed)
	}
}

func TestWaitForNonPositive(t *testing.T) {
	t.Parallel()

	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := WaitFor(ctx, -time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled context to be reported, got %v", err)
	}
}
