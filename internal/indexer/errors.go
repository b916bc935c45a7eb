package indexer

import (
	"errors"
)

var (
	// ErrConflict means an indexing run is already active for the event.
	ErrConflict = errors.New("indexing already in progress for this event")

	// ErrNotRunning means there is no active run to cancel.
	ErrNotRunning = errors.New("no indexing run in progress for this event")

	// ErrEmptyEventID means the event name normalized to nothing usable.
	ErrEmptyEventID = errors.New("event name normalizes to an empty collection id")
)
