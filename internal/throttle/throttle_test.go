package throttle

import (
	"sync/atomic"
	"testing"
	"time"
)

func waitForCount(t *testing.T, counter *atomic.Int64, want int64, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if counter.Load() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("expected %d runs, got %d", want, counter.Load())
}

func TestBurstCoalescesIntoOneTrailingRun(t *testing.T) {
	var runs atomic.Int64
	tr := New(30*time.Millisecond, func() { runs.Add(1) })

	run, done := tr.Enter()
	if !run {
		t.Fatalf("first enter should win")
	}
	for i := 0; i < 10; i++ {
		if win, _ := tr.Enter(); win {
			t.Fatalf("enter during running cycle should coalesce")
		}
	}
	runs.Add(1)
	done()

	// One trailing run at the window edge, never ten.
	waitForCount(t, &runs, 2, time.Second)
	time.Sleep(60 * time.Millisecond)
	if got := runs.Load(); got != 2 {
		t.Fatalf("expected exactly 2 runs, got %d", got)
	}
}

func TestCallsInsideWindowAfterIdleCycleCoalesce(t *testing.T) {
	var runs atomic.Int64
	tr := New(40*time.Millisecond, func() { runs.Add(1) })

	run, done := tr.Enter()
	if !run {
		t.Fatalf("first enter should win")
	}
	runs.Add(1)
	done()

	// Cycle finished, window still open: N triggers retain one intent.
	tr.Trigger()
	tr.Trigger()
	tr.Trigger()
	waitForCount(t, &runs, 2, time.Second)
}

func TestEnterAfterWindowRunsImmediately(t *testing.T) {
	var runs atomic.Int64
	tr := New(10*time.Millisecond, func() { runs.Add(1) })

	run, done := tr.Enter()
	if !run {
		t.Fatalf("first enter should win")
	}
	done()
	time.Sleep(20 * time.Millisecond)

	run, done = tr.Enter()
	if !run {
		t.Fatalf("enter after window should win")
	}
	done()
}

func TestStopCancelsTrailingRun(t *testing.T) {
	var runs atomic.Int64
	tr := New(30*time.Millisecond, func() { runs.Add(1) })

	run, done := tr.Enter()
	if !run {
		t.Fatalf("first enter should win")
	}
	tr.Trigger()
	done()
	tr.Stop()

	time.Sleep(60 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Fatalf("expected no trailing run after stop, got %d", got)
	}

	if win, _ := tr.Enter(); win {
		t.Fatalf("enter after stop should not win")
	}
}
