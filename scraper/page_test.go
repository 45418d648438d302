package scraper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPollLookup_WaitsForLateElement(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	appearsAt := time.Now().Add(40 * time.Millisecond)
	var calls atomic.Int32
	got, err := pollLookup(ctx, func() (string, bool, error) {
		calls.Add(1)
		if time.Now().Before(appearsAt) {
			return "", false, nil
		}
		return "Nightcall", true, nil
	})

	if err != nil {
		t.Fatalf("pollLookup: %v", err)
	}
	if got != "Nightcall" {
		t.Errorf("got %q", got)
	}
	if calls.Load() < 2 {
		t.Errorf("lookup called %d times, want retries before the element appeared", calls.Load())
	}
}

func TestPollLookup_GivesUpAtDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := pollLookup(ctx, func() (string, bool, error) {
		return "", false, nil
	})
	elapsed := time.Since(start)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if elapsed < 90*time.Millisecond {
		t.Errorf("gave up after %s, before the 100ms bound", elapsed)
	}
	if elapsed > time.Second {
		t.Errorf("kept polling for %s after the deadline", elapsed)
	}
}

func TestPollLookup_StopsOnError(t *testing.T) {
	boom := errors.New("cdp: node detached")
	var calls atomic.Int32
	_, err := pollLookup(context.Background(), func() (string, bool, error) {
		calls.Add(1)
		return "", false, boom
	})

	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if calls.Load() != 1 {
		t.Errorf("lookup called %d times after a hard error", calls.Load())
	}
}
