package database

import (
	"context"
)

// RecordStore persists per-photo indexing outcomes
type RecordStore interface {
	// MarkIndexed upserts a successful outcome for (EventID, NormalizedID)
	MarkIndexed(ctx context.Context, photo IndexedPhoto) error

	// MarkError upserts a failed outcome with the error message
	MarkError(ctx context.Context, eventID, fileName, normalizedID, message string) error

	// ListIndexedIDs returns the normalized ids recorded as indexed for an event
	ListIndexedIDs(ctx context.Context, eventID string) ([]string, error)

	// GetRecord returns the record for (eventID, normalizedID), or nil if absent
	GetRecord(ctx context.Context, eventID, normalizedID string) (*IndexRecord, error)

	// ListRecords returns all records for an event
	ListRecords(ctx context.Context, eventID string) ([]IndexRecord, error)

	// Stats aggregates outcome counts for an event
	Stats(ctx context.Context, eventID string) (*EventStats, error)

	// DeleteByNormalizedIDs removes records whose source photos are gone,
	// returning the number of rows deleted
	DeleteByNormalizedIDs(ctx context.Context, eventID string, normalizedIDs []string) (int64, error)
}
