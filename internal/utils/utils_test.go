package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	original := sleep
	defer func() { sleep = original }()

	var slept time.Duration
	sleep = func(d time.Duration) { slept = d }

	if err := WaitFor(context.Background(), 3*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slept != 3*time.Second {
		t.Fatalf("expected sleep of 3s, got %s", slept)
	}

	slept = 0
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slept != 0 {
		t.Fatalf("expected no sleep for zero duration")
	}
}

func TestWaitForCancelled(t *testing.T) {
	original := sleep
	defer func() { sleep = original }()

	release := make(chan struct{})
	sleep = func(time.Duration) { <-release }
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
