package indexer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Status of an event's indexing run.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Progress is a point-in-time snapshot of one event's run. Counters only ever
// grow while the run is active.
type Progress struct {
	EventID      string     `json:"event_id"`
	RunID        string     `json:"run_id,omitempty"`
	Status       Status     `json:"status"`
	Total        int64      `json:"total"`
	Processed    int64      `json:"processed"`
	Indexed      int64      `json:"indexed"`
	Repaired     int64      `json:"repaired"`
	Failed       int64      `json:"failed"`
	CurrentPhoto string     `json:"current_photo,omitempty"`
	Message      string     `json:"message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// Run is the mutable state of one active indexing run. Counter updates use
// atomics so workers never contend on the mutex; status transitions take it.
type Run struct {
	eventID string
	id      string

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	total     atomic.Int64
	processed atomic.Int64
	indexed   atomic.Int64
	repaired  atomic.Int64
	failed    atomic.Int64

	mu         sync.Mutex
	status     Status
	current    string
	message    string
	startedAt  time.Time
	finishedAt *time.Time
}

func (r *Run) ID() string               { return r.id }
func (r *Run) Context() context.Context { return r.ctx }

// Done is closed when the run reaches a terminal status.
func (r *Run) Done() <-chan struct{} { return r.done }

func (r *Run) SetTotal(n int64)  { r.total.Store(n) }
func (r *Run) AddProcessed() int64 { return r.processed.Add(1) }
func (r *Run) AddIndexed()       { r.indexed.Add(1) }
func (r *Run) AddRepaired()      { r.repaired.Add(1) }
func (r *Run) AddFailed()        { r.failed.Add(1) }

func (r *Run) SetCurrent(name string) {
	r.mu.Lock()
	r.current = name
	r.mu.Unlock()
}

func (r *Run) Snapshot() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	started := r.startedAt
	return Progress{
		EventID:      r.eventID,
		RunID:        r.id,
		Status:       r.status,
		Total:        r.total.Load(),
		Processed:    r.processed.Load(),
		Indexed:      r.indexed.Load(),
		Repaired:     r.repaired.Load(),
		Failed:       r.failed.Load(),
		CurrentPhoto: r.current,
		Message:      r.message,
		StartedAt:    &started,
		FinishedAt:   r.finishedAt,
	}
}

func (r *Run) active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status == StatusRunning
}

func (r *Run) finish(status Status, message string) {
	r.mu.Lock()
	if r.status != StatusRunning {
		r.mu.Unlock()
		return
	}
	now := time.Now()
	r.status = status
	r.message = message
	r.current = ""
	r.finishedAt = &now
	r.mu.Unlock()

	r.cancel()
	close(r.done)
}

func (r *Run) Complete(message string) { r.finish(StatusCompleted, message) }
func (r *Run) Fail(message string)     { r.finish(StatusFailed, message) }
func (r *Run) Cancelled(message string) { r.finish(StatusCancelled, message) }

// Tracker is the per-event run registry. Begin is the compare-and-set gate
// that guarantees at most one active run per event; distinct events never
// block each other.
type Tracker struct {
	mu   sync.Mutex
	runs map[string]*Run
}

func NewTracker() *Tracker {
	return &Tracker{runs: make(map[string]*Run)}
}

// Begin starts a run for the event, or returns ErrConflict if one is active.
// The returned run is already in StatusRunning.
func (t *Tracker) Begin(eventID string) (*Run, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.runs[eventID]; ok && existing.active() {
		return nil, ErrConflict
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := &Run{
		eventID:   eventID,
		id:        uuid.New().String(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		status:    StatusRunning,
		startedAt: time.Now(),
	}
	t.runs[eventID] = run
	return run, nil
}

// Get returns the latest snapshot for the event, or an idle progress if the
// event was never indexed in this process.
func (t *Tracker) Get(eventID string) Progress {
	t.mu.Lock()
	run, ok := t.runs[eventID]
	t.mu.Unlock()

	if !ok {
		return Progress{EventID: eventID, Status: StatusIdle}
	}
	return run.Snapshot()
}

// Cancel requests cancellation of the event's active run.
func (t *Tracker) Cancel(eventID string) error {
	t.mu.Lock()
	run, ok := t.runs[eventID]
	t.mu.Unlock()

	if !ok || !run.active() {
		return ErrNotRunning
	}
	run.cancel()
	return nil
}
