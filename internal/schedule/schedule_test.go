package schedule

import (
	"context"
	"testing"
	"time"
)

func TestEveryRunsImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var runs int
	Every(ctx, time.Hour, func(ctx context.Context) {
		runs++
		cancel()
	})

	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
}

func TestEveryRepeats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs int
	Every(ctx, time.Millisecond, func(ctx context.Context) {
		runs++
		if runs >= 3 {
			cancel()
		}
	})

	if runs < 3 {
		t.Fatalf("runs = %d, want at least 3", runs)
	}
}

func TestEveryStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Every(ctx, time.Millisecond, func(ctx context.Context) {})
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Every did not return after context cancellation")
	}
}
