package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	fired := make(chan struct{}, 8)
	s := NewTickerScheduler(10 * time.Millisecond)

	err := s.Start(context.Background(), func(time.Time) {
		runs.Add(1)
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatalf("job did not fire (run %d)", i)
		}
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != after {
		t.Fatalf("job kept running after Stop")
	}
}

func TestTickerSchedulerRejectsZeroInterval(t *testing.T) {
	t.Parallel()

	if err := NewTickerScheduler(0).Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatalf("expected error for zero interval")
	}
}

func TestTickerSchedulerStopWithoutStart(t *testing.T) {
	t.Parallel()

	if err := NewTickerScheduler(time.Second).Stop(context.Background()); err != nil {
		t.Fatalf("Stop on idle scheduler returned error: %v", err)
	}
}
