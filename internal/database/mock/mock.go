// Package mock provides an in-memory database.RecordStore for tests.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eventfoto/face-indexer/internal/database"
)

// RecordStore is an in-memory implementation of database.RecordStore.
// Set the Err fields to inject failures.
type RecordStore struct {
	MarkIndexedErr error
	MarkErrorErr   error
	ListErr        error
	StatsErr       error
	DeleteErr      error

	mu      sync.Mutex
	records map[string]map[string]*database.IndexRecord // eventID -> normalizedID -> record
}

func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string]map[string]*database.IndexRecord),
	}
}

func (s *RecordStore) event(eventID string) map[string]*database.IndexRecord {
	if s.records[eventID] == nil {
		s.records[eventID] = make(map[string]*database.IndexRecord)
	}
	return s.records[eventID]
}

func (s *RecordStore) MarkIndexed(ctx context.Context, photo database.IndexedPhoto) error {
	if s.MarkIndexedErr != nil {
		return s.MarkIndexedErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.event(photo.EventID)[photo.NormalizedID] = &database.IndexRecord{
		EventID:      photo.EventID,
		FileName:     photo.FileName,
		NormalizedID: photo.NormalizedID,
		FullPath:     photo.FullPath,
		StorageKey:   photo.StorageKey,
		CollectionID: photo.CollectionID,
		Status:       database.StatusIndexed,
		FaceCount:    photo.FaceCount,
		FaceID:       photo.FaceID,
		FileSize:     photo.FileSize,
		Width:        photo.Width,
		Height:       photo.Height,
		IndexedAt:    &now,
		UpdatedAt:    now,
	}
	return nil
}

func (s *RecordStore) MarkError(ctx context.Context, eventID, fileName, normalizedID, message string) error {
	if s.MarkErrorErr != nil {
		return s.MarkErrorErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.event(eventID)[normalizedID] = &database.IndexRecord{
		EventID:      eventID,
		FileName:     fileName,
		NormalizedID: normalizedID,
		Status:       database.StatusError,
		ErrorMessage: message,
		UpdatedAt:    time.Now(),
	}
	return nil
}

func (s *RecordStore) ListIndexedIDs(ctx context.Context, eventID string) ([]string, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, rec := range s.records[eventID] {
		if rec.Status == database.StatusIndexed {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *RecordStore) GetRecord(ctx context.Context, eventID, normalizedID string) (*database.IndexRecord, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[eventID][normalizedID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *RecordStore) ListRecords(ctx context.Context, eventID string) ([]database.IndexRecord, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []database.IndexRecord
	for _, rec := range s.records[eventID] {
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].NormalizedID < records[j].NormalizedID
	})
	return records, nil
}

func (s *RecordStore) Stats(ctx context.Context, eventID string) (*database.EventStats, error) {
	if s.StatsErr != nil {
		return nil, s.StatsErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &database.EventStats{EventID: eventID}
	for _, rec := range s.records[eventID] {
		stats.Total++
		switch rec.Status {
		case database.StatusIndexed:
			stats.Indexed++
			stats.TotalFaces += rec.FaceCount
		case database.StatusError:
			stats.Failed++
		case database.StatusProcessing:
			stats.Processing++
		}
	}
	return stats, nil
}

func (s *RecordStore) DeleteByNormalizedIDs(ctx context.Context, eventID string, normalizedIDs []string) (int64, error) {
	if s.DeleteErr != nil {
		return 0, s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for _, id := range normalizedIDs {
		if _, ok := s.records[eventID][id]; ok {
			delete(s.records[eventID], id)
			deleted++
		}
	}
	return deleted, nil
}
