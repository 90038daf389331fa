package adapter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	tests := map[int]time.Duration{
		1: 500 * time.Millisecond,
		2: time.Second,
		3: 2 * time.Second,
	}
	for i, want := range tests {
		if got := Backoff(i); got != want {
			t.Errorf("Backoff(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestRetry_SucceedsAfterFailure(t *testing.T) {
	calls := 0
	err := Retry(t.Context(), "test", 1, func(context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetry_FatalStopsImmediately(t *testing.T) {
	calls := 0
	boom := errors.New("bad request")
	err := Retry(t.Context(), "test", 3, func(context.Context) error {
		calls++
		return boom
	}, func(err error) bool { return errors.Is(err, boom) })

	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if !strings.Contains(err.Error(), "non-retriable") {
		t.Errorf("error = %q, want non-retriable", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_Exhausts(t *testing.T) {
	err := Retry(t.Context(), "test", 0, func(context.Context) error {
		return errors.New("down")
	}, nil)
	if err == nil || !strings.Contains(err.Error(), "failed after 1 attempts") {
		t.Errorf("error = %v", err)
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	err := Retry(ctx, "test", 3, func(context.Context) error { return nil }, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
