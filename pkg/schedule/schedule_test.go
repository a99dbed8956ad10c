package schedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewInvalidSpec(t *testing.T) {
	tests := []string{"", "every minute", "61 * * * *", "* * * *"}
	for _, spec := range tests {
		if _, err := New(spec, func(context.Context) error { return nil }); err == nil {
			t.Errorf("New(%q) expected error", spec)
		}
	}
}

func TestNewRequiresJob(t *testing.T) {
	if _, err := New("@hourly", nil); err == nil {
		t.Error("New() expected error for nil job")
	}
}

func TestNewValidSpecs(t *testing.T) {
	for _, spec := range []string{"@hourly", "*/30 * * * *", "0 6 * * 1-5", "@every 5m"} {
		if _, err := New(spec, func(context.Context) error { return nil }); err != nil {
			t.Errorf("New(%q) error = %v", spec, err)
		}
	}
}

func TestStartRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32

	s, err := New("@every 1s", func(context.Context) error {
		if runs.Add(1) >= 2 {
			cancel()
		}
		return errors.New("failed runs do not stop the scheduler")
	})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		cancel()
		t.Fatal("scheduler did not stop")
	}
	if got := runs.Load(); got < 2 {
		t.Errorf("runs = %d, want at least 2", got)
	}
}

func TestRunOnStartAndNoOverlap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu      sync.Mutex
		active  int
		overlap bool
		runs    int
	)
	first := make(chan struct{})

	s, err := New("@every 1s", func(context.Context) error {
		mu.Lock()
		active++
		if active > 1 {
			overlap = true
		}
		runs++
		if runs == 1 {
			close(first)
		}
		mu.Unlock()

		time.Sleep(1500 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return nil
	}, WithRunOnStart(), WithStopTimeout(5*time.Second))
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	select {
	case <-first:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("job did not run on start")
	}

	time.Sleep(2500 * time.Millisecond)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if overlap {
		t.Error("runs overlapped")
	}
}
