package indexer

import (
	"errors"
	"sync"
	"testing"
)

func TestTrackerBeginConflict(t *testing.T) {
	tracker := NewTracker()

	run, err := tracker.Begin("gala")
	if err != nil {
		t.Fatalf("First begin failed: %v", err)
	}

	if _, err := tracker.Begin("gala"); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}

	// a different event is independent
	if _, err := tracker.Begin("recital"); err != nil {
		t.Errorf("Different event should start: %v", err)
	}

	// after the run finishes, the event can start again
	run.Complete("done")
	if _, err := tracker.Begin("gala"); err != nil {
		t.Errorf("Begin after completion failed: %v", err)
	}
}

func TestTrackerBeginConcurrent(t *testing.T) {
	tracker := NewTracker()

	const goroutines = 50
	var wg sync.WaitGroup
	started := make(chan struct{}, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tracker.Begin("gala"); err == nil {
				started <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(started)

	count := 0
	for range started {
		count++
	}
	if count != 1 {
		t.Errorf("Expected exactly 1 winner, got %d", count)
	}
}

func TestTrackerGetIdle(t *testing.T) {
	tracker := NewTracker()
	p := tracker.Get("never-indexed")
	if p.Status != StatusIdle {
		t.Errorf("Expected idle, got %s", p.Status)
	}
	if p.EventID != "never-indexed" {
		t.Errorf("EventID = %q", p.EventID)
	}
}

func TestRunCounters(t *testing.T) {
	tracker := NewTracker()
	run, err := tracker.Begin("gala")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	run.SetTotal(3)
	run.AddIndexed()
	run.AddProcessed()
	run.AddFailed()
	run.AddProcessed()
	run.AddRepaired()
	run.SetCurrent("IMG_0002.jpg")

	p := tracker.Get("gala")
	if p.Status != StatusRunning {
		t.Errorf("Expected running, got %s", p.Status)
	}
	if p.Total != 3 || p.Processed != 2 || p.Indexed != 1 || p.Failed != 1 || p.Repaired != 1 {
		t.Errorf("Unexpected counters: %+v", p)
	}
	if p.CurrentPhoto != "IMG_0002.jpg" {
		t.Errorf("CurrentPhoto = %q", p.CurrentPhoto)
	}
}

func TestRunTerminalTransitions(t *testing.T) {
	tracker := NewTracker()
	run, _ := tracker.Begin("gala")

	run.Fail("store unavailable")
	// a later transition must not overwrite the terminal state
	run.Complete("done")

	p := tracker.Get("gala")
	if p.Status != StatusFailed {
		t.Errorf("Expected failed, got %s", p.Status)
	}
	if p.Message != "store unavailable" {
		t.Errorf("Message = %q", p.Message)
	}
	if p.FinishedAt == nil {
		t.Error("Expected FinishedAt to be set")
	}

	select {
	case <-run.Done():
	default:
		t.Error("Done channel should be closed after terminal transition")
	}
}

func TestTrackerCancel(t *testing.T) {
	tracker := NewTracker()

	if err := tracker.Cancel("gala"); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Expected ErrNotRunning, got %v", err)
	}

	run, _ := tracker.Begin("gala")
	if err := tracker.Cancel("gala"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	select {
	case <-run.Context().Done():
	default:
		t.Error("Run context should be cancelled")
	}
}
