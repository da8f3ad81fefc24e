package clock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRealSleep_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Real.Sleep(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep did not return promptly on a canceled context")
	}
}

func TestRealSleep_Elapses(t *testing.T) {
	start := time.Now()
	if err := Real.Sleep(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("Sleep returned before the requested duration")
	}
}

func TestFake(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)

	_ = f.Sleep(context.Background(), 120*time.Millisecond)
	_ = f.Sleep(context.Background(), 800*time.Millisecond)
	f.Advance(time.Second)

	if got := f.Now().Sub(start); got != 1920*time.Millisecond {
		t.Errorf("elapsed = %v, want 1.92s", got)
	}
	if got := f.Total(); got != 920*time.Millisecond {
		t.Errorf("Total() = %v, want 920ms", got)
	}
	if len(f.Slept()) != 2 {
		t.Errorf("Slept() len = %d, want 2", len(f.Slept()))
	}
}
