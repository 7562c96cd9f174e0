package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	t.Parallel()

	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := WaitFor(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := WaitFor(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled for a zero wait on a done context, got %v", err)
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		base    time.Duration
		ceiling time.Duration
		want    time.Duration
	}{
		{attempt: 0, base: time.Second, want: 0},
		{attempt: 1, base: time.Second, want: time.Second},
		{attempt: 3, base: time.Second, want: 3 * time.Second},
		{attempt: 5, base: time.Second, ceiling: 2 * time.Second, want: 2 * time.Second},
		{attempt: 2, base: 0, want: 0},
	}

	for _, tt := range tests {
		if got := Backoff(tt.attempt, tt.base, tt.ceiling); got != tt.want {
			t.Fatalf("Backoff(%d, %s, %s) = %s, want %s", tt.attempt, tt.base, tt.ceiling, got, tt.want)
		}
	}
}
