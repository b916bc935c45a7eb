package database

import (
	"time"
)

// RecordStatus is the durable outcome of indexing a single photo
type RecordStatus string

const (
	StatusIndexed    RecordStatus = "indexed"
	StatusError      RecordStatus = "error"
	StatusProcessing RecordStatus = "processing"
)

// IndexRecord represents a per-photo indexing outcome stored in the database.
// (EventID, NormalizedID) is unique; repeated runs upsert in place.
type IndexRecord struct {
	ID           int64
	EventID      string
	FileName     string // original object name as enumerated from storage
	NormalizedID string // canonical external image id submitted to the recognition service
	FullPath     string // folder path of the object within the event
	StorageKey   string // full object key in the photo store
	CollectionID string // recognition collection the faces went into
	Status       RecordStatus
	FaceCount    int
	FaceID       string // first face id returned by the recognition service
	FileSize     int64
	Width        int
	Height       int
	ErrorMessage string
	IndexedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IndexedPhoto carries everything MarkIndexed persists about one photo.
type IndexedPhoto struct {
	EventID      string
	FileName     string
	NormalizedID string
	FullPath     string
	StorageKey   string
	CollectionID string
	FaceID       string
	FaceCount    int
	FileSize     int64
	Width        int
	Height       int
}

// EventStats aggregates indexing outcomes for one event
type EventStats struct {
	EventID    string `json:"event_id"`
	Total      int    `json:"total"`
	Indexed    int    `json:"indexed"`
	Failed     int    `json:"failed"`
	Processing int    `json:"processing"`
	TotalFaces int    `json:"total_faces"`
}
