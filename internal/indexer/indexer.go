// Package indexer drives bulk face indexing of event photo collections. A run
// enumerates the event in storage, reconciles it against the local records
// and the remote collection, and pushes the missing photos through the
// fetch / transcode / submit / persist pipeline under bounded concurrency.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/eventfoto/face-indexer/internal/codec"
	"github.com/eventfoto/face-indexer/internal/config"
	"github.com/eventfoto/face-indexer/internal/constants"
	"github.com/eventfoto/face-indexer/internal/database"
	"github.com/eventfoto/face-indexer/internal/normalize"
	"github.com/eventfoto/face-indexer/internal/photostore"
	"github.com/eventfoto/face-indexer/internal/recognition"
)

// Per-call deadlines keep a hung remote call bounded to one retry attempt.
var (
	storageCallTimeout     = time.Duration(constants.StorageCallTimeoutSec) * time.Second
	recognitionCallTimeout = time.Duration(constants.RecognitionCallTimeoutSec) * time.Second
	databaseCallTimeout    = time.Duration(constants.DatabaseCallTimeoutSec) * time.Second
)

// PhotoStore is the slice of the object store the pipeline consumes.
type PhotoStore interface {
	EnumerateEvent(ctx context.Context, eventID string) ([]photostore.PhotoDescriptor, error)
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Invalidator drops cached event state once a run has changed it.
type Invalidator interface {
	InvalidateEvent(eventID string) int
}

// Service owns the per-event run registry and executes indexing runs in the
// background.
type Service struct {
	store   PhotoStore
	faces   recognition.FaceIndex
	records database.RecordStore
	cache   Invalidator
	tracker *Tracker
	cfg     config.IndexingConfig
	prefix  string
	logger  *log.Logger
}

func NewService(
	store PhotoStore,
	faces recognition.FaceIndex,
	records database.RecordStore,
	cache Invalidator,
	cfg config.IndexingConfig,
	collectionPrefix string,
	logger *log.Logger,
) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		store:   store,
		faces:   faces,
		records: records,
		cache:   cache,
		tracker: NewTracker(),
		cfg:     cfg,
		prefix:  collectionPrefix,
		logger:  logger,
	}
}

// CollectionID returns the remote collection id used for an event.
func (s *Service) CollectionID(eventID string) string {
	return normalize.CollectionID(s.prefix + eventID)
}

// StartIndexing launches a background run for the event. It returns
// ErrConflict while a run for the same event is active; runs for distinct
// events proceed independently.
func (s *Service) StartIndexing(eventID string) (Progress, error) {
	collection := s.CollectionID(eventID)
	if collection == "" {
		return Progress{}, ErrEmptyEventID
	}

	run, err := s.tracker.Begin(eventID)
	if err != nil {
		return Progress{}, err
	}

	go s.execute(run, eventID, collection)
	return run.Snapshot(), nil
}

// GetProgress reports the latest known run state for the event.
func (s *Service) GetProgress(eventID string) Progress {
	return s.tracker.Get(eventID)
}

// CancelIndexing requests cancellation of the event's active run. Workers
// observe it at item boundaries, so the run drains quickly but cleanly.
func (s *Service) CancelIndexing(eventID string) error {
	return s.tracker.Cancel(eventID)
}

func (s *Service) concurrency() int {
	if s.cfg.Concurrency > 0 {
		return s.cfg.Concurrency
	}
	return constants.DefaultConcurrency
}

func (s *Service) chunkSize() int {
	if s.cfg.ChunkSize > 0 {
		return s.cfg.ChunkSize
	}
	return constants.DefaultChunkSize
}

func (s *Service) retryPolicy() RetryPolicy {
	attempts := s.cfg.Retry.MaxAttempts
	if attempts <= 0 {
		attempts = constants.DefaultRetryAttempts
	}
	delay := time.Duration(s.cfg.Retry.BaseDelayMs) * time.Millisecond
	if delay <= 0 {
		delay = constants.DefaultRetryBaseDelayMs * time.Millisecond
	}
	return RetryPolicy{
		MaxAttempts: attempts,
		BaseDelay:   delay,
		IsRetryable: func(err error) bool {
			return recognition.IsRetryable(err) || photostore.IsRetryable(err)
		},
	}
}

func (s *Service) execute(run *Run, eventID, collection string) {
	ctx := run.Context()
	metrics := NewMetrics(s.logger)
	policy := s.retryPolicy()

	_, err := Retry(ctx, policy, func() (struct{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, recognitionCallTimeout)
		defer cancel()
		return struct{}{}, s.faces.EnsureCollection(callCtx, collection)
	})
	if err != nil {
		run.Fail(fmt.Sprintf("preparing collection %q: %v", collection, err))
		return
	}

	// enumeration failures abort the run; the store is the source of truth
	// and a partial listing would corrupt the reconciliation
	photos, err := s.store.EnumerateEvent(ctx, eventID)
	if err != nil {
		run.Fail(fmt.Sprintf("enumerating event: %v", err))
		return
	}

	localIDs, err := s.records.ListIndexedIDs(ctx, eventID)
	if err != nil {
		run.Fail(fmt.Sprintf("loading local records: %v", err))
		return
	}

	remoteIDs, err := Retry(ctx, policy, func() ([]string, error) {
		callCtx, cancel := context.WithTimeout(ctx, recognitionCallTimeout)
		defer cancel()
		return s.faces.ListExternalIDs(callCtx, collection)
	})
	if err != nil {
		run.Fail(fmt.Sprintf("listing remote collection: %v", err))
		return
	}

	plan := BuildPlan(photos, localIDs, remoteIDs)
	s.logger.Printf("[%s] reconciled %d photos: %d consistent, %d to index, %d to repair, %d duplicates",
		eventID, len(photos), len(plan.Consistent), len(plan.NeedsIndex), len(plan.Repair), len(plan.Duplicates))

	s.applyRepairs(ctx, run, eventID, collection, plan.Repair)
	s.recordDuplicates(ctx, run, eventID, plan.Duplicates)

	run.SetTotal(int64(len(plan.NeedsIndex)))

	if len(plan.NeedsIndex) > 0 {
		switch s.cfg.Mode {
		case "chunked":
			s.runChunked(ctx, run, eventID, collection, plan.NeedsIndex, metrics)
		case "single":
			// single shot: everything at once, no pool bound
			s.runPool(ctx, run, eventID, collection, plan.NeedsIndex, len(plan.NeedsIndex), metrics)
		default:
			s.runPool(ctx, run, eventID, collection, plan.NeedsIndex, s.concurrency(), metrics)
		}
	}

	if s.cache != nil {
		dropped := s.cache.InvalidateEvent(eventID)
		s.logger.Printf("[%s] invalidated %d cache entries", eventID, dropped)
	}

	if ctx.Err() != nil {
		run.Cancelled("indexing cancelled")
		return
	}

	snap := run.Snapshot()
	run.Complete(fmt.Sprintf("indexed %d, repaired %d, failed %d | %s",
		snap.Indexed, snap.Repaired, snap.Failed, metrics.Summary(snap.Processed)))
	s.logger.Printf("[%s] run %s finished: %s", eventID, run.ID(), s.tracker.Get(eventID).Message)
}

// applyRepairs writes records for photos the remote collection already holds.
// The remote is authoritative, so nothing is resubmitted.
func (s *Service) applyRepairs(ctx context.Context, run *Run, eventID, collection string, repairs []Item) {
	for _, item := range repairs {
		if ctx.Err() != nil {
			return
		}
		err := s.records.MarkIndexed(ctx, database.IndexedPhoto{
			EventID:      eventID,
			FileName:     item.Desc.Name,
			NormalizedID: item.NormalizedID,
			FullPath:     item.Desc.Path,
			StorageKey:   item.Desc.Key,
			CollectionID: collection,
			FileSize:     item.Desc.Size,
		})
		if err != nil {
			s.logger.Printf("[%s] repair record for %q failed: %v", eventID, item.NormalizedID, err)
			run.AddFailed()
			continue
		}
		run.AddRepaired()
	}
}

// recordDuplicates stores a permanent error for every photo whose canonical
// id collided within the run. The error row is keyed by the normalized
// folder-qualified name so it cannot clobber the winning photo's record.
func (s *Service) recordDuplicates(ctx context.Context, run *Run, eventID string, duplicates []Item) {
	for i, item := range duplicates {
		if ctx.Err() != nil {
			return
		}
		dupID := normalize.ExternalImageID(item.Desc.Path + "/" + item.Desc.Name)
		if dupID == "" || dupID == item.NormalizedID {
			dupID = fmt.Sprintf("duplicate-%d", i)
		}
		message := fmt.Sprintf("canonical id collision: %q", item.NormalizedID)
		if item.NormalizedID == "" {
			message = "file name normalizes to an empty id"
		}
		if err := s.records.MarkError(ctx, eventID, item.Desc.Name, dupID, message); err != nil {
			s.logger.Printf("[%s] recording duplicate %q failed: %v", eventID, item.Desc.Name, err)
		}
		run.AddFailed()
	}
}

// runPool processes items under a semaphore bound. This is both the default
// bounded fan-out mode and, with limit == len(items), the single shot mode.
func (s *Service) runPool(ctx context.Context, run *Run, eventID, collection string, items []Item, limit int, metrics *Metrics) {
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(item Item) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			s.indexOne(ctx, run, eventID, collection, item, metrics)
		}(item)
	}

	wg.Wait()
}

// runChunked processes items in fixed-size chunks with a short pause between
// them, keeping memory flat on very large events.
func (s *Service) runChunked(ctx context.Context, run *Run, eventID, collection string, items []Item, metrics *Metrics) {
	size := s.chunkSize()
	for start := 0; start < len(items); start += size {
		if ctx.Err() != nil {
			return
		}
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		s.runPool(ctx, run, eventID, collection, items[start:end], s.concurrency(), metrics)

		if end < len(items) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(100 * time.Millisecond):
			}
		}
	}
}

// indexOne runs the four step pipeline for a single photo. A failure here
// stays contained to this photo: the error is recorded and the run moves on.
func (s *Service) indexOne(ctx context.Context, run *Run, eventID, collection string, item Item, metrics *Metrics) {
	run.SetCurrent(item.Desc.Name)
	policy := s.retryPolicy()

	data, err := Retry(ctx, policy, func() ([]byte, error) {
		callCtx, cancel := context.WithTimeout(ctx, storageCallTimeout)
		defer cancel()
		return s.store.Fetch(callCtx, item.Desc.Key)
	})
	if err != nil {
		s.recordFailure(ctx, run, eventID, item, fmt.Errorf("fetching photo: %w", err), metrics)
		return
	}
	metrics.AddBytes(int64(len(data)))

	// dimensions are best effort: a header the local decoders cannot read
	// must not fail the photo
	width, height, _ := codec.Dimensions(data)

	if photostore.NeedsTranscode(item.Desc.Name) {
		// decode failures are permanent, no retry
		converted, err := codec.ToJPEG(data)
		if err != nil {
			s.recordFailure(ctx, run, eventID, item, fmt.Errorf("transcoding: %w", err), metrics)
			return
		}
		data = converted
	}

	result, err := Retry(ctx, policy, func() (recognition.IndexResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, recognitionCallTimeout)
		defer cancel()
		return s.faces.IndexFaces(callCtx, collection, data, item.NormalizedID)
	})
	if err != nil {
		s.recordFailure(ctx, run, eventID, item, fmt.Errorf("submitting to collection: %w", err), metrics)
		return
	}

	_, err = Retry(ctx, policy, func() (struct{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, databaseCallTimeout)
		defer cancel()
		return struct{}{}, s.records.MarkIndexed(callCtx, database.IndexedPhoto{
			EventID:      eventID,
			FileName:     item.Desc.Name,
			NormalizedID: item.NormalizedID,
			FullPath:     item.Desc.Path,
			StorageKey:   item.Desc.Key,
			CollectionID: collection,
			FaceID:       result.FaceID,
			FaceCount:    result.FaceCount,
			FileSize:     item.Desc.Size,
			Width:        width,
			Height:       height,
		})
	})
	if err != nil {
		s.recordFailure(ctx, run, eventID, item, fmt.Errorf("persisting record: %w", err), metrics)
		return
	}

	run.AddIndexed()
	processed := run.AddProcessed()
	metrics.PhotoProcessed(eventID, processed, run.total.Load())
}

func (s *Service) recordFailure(ctx context.Context, run *Run, eventID string, item Item, cause error, metrics *Metrics) {
	if errors.Is(cause, context.Canceled) || ctx.Err() != nil {
		// cancellation is not a per-photo failure
		return
	}

	s.logger.Printf("[%s] photo %q failed: %v", eventID, item.Desc.Name, cause)
	if err := s.records.MarkError(ctx, eventID, item.Desc.Name, item.NormalizedID, cause.Error()); err != nil {
		s.logger.Printf("[%s] recording failure for %q failed: %v", eventID, item.Desc.Name, err)
	}

	run.AddFailed()
	processed := run.AddProcessed()
	metrics.PhotoProcessed(eventID, processed, run.total.Load())
}

// Statistics is the durable indexing state of an event compared against what
// the store currently holds.
type Statistics struct {
	EventID        string  `json:"event_id"`
	TotalInStore   int     `json:"total_in_store"`
	Indexed        int     `json:"indexed"`
	Failed         int     `json:"failed"`
	Processing     int     `json:"processing"`
	NotIndexed     int     `json:"not_indexed"`
	TotalFaces     int     `json:"total_faces"`
	PercentIndexed float64 `json:"percent_indexed"`
}

// GetStatistics reads the record aggregates and compares them against a
// fresh enumeration of the store.
func (s *Service) GetStatistics(ctx context.Context, eventID string) (*Statistics, error) {
	stats, err := s.records.Stats(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("reading record stats: %w", err)
	}

	photos, err := s.store.EnumerateEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("counting photos in store: %w", err)
	}

	result := &Statistics{
		EventID:      eventID,
		TotalInStore: len(photos),
		Indexed:      stats.Indexed,
		Failed:       stats.Failed,
		Processing:   stats.Processing,
		TotalFaces:   stats.TotalFaces,
	}
	if notIndexed := len(photos) - stats.Total; notIndexed > 0 {
		result.NotIndexed = notIndexed
	}
	if len(photos) > 0 {
		result.PercentIndexed = float64(stats.Indexed) / float64(len(photos)) * 100
	}
	return result, nil
}

// Cleanup deletes records whose source photo no longer exists in the store
// and returns the number of records removed. It never touches the remote
// collection.
func (s *Service) Cleanup(ctx context.Context, eventID string) (int64, error) {
	photos, err := s.store.EnumerateEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("enumerating event: %w", err)
	}

	present := make(map[string]bool, len(photos))
	for _, photo := range photos {
		present[normalize.ExternalImageID(photo.Name)] = true
	}

	records, err := s.records.ListRecords(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("listing records: %w", err)
	}

	var stale []string
	for _, rec := range records {
		if !present[rec.NormalizedID] {
			stale = append(stale, rec.NormalizedID)
		}
	}

	deleted, err := s.records.DeleteByNormalizedIDs(ctx, eventID, stale)
	if err != nil {
		return 0, fmt.Errorf("deleting stale records: %w", err)
	}
	if deleted > 0 && s.cache != nil {
		s.cache.InvalidateEvent(eventID)
	}
	return deleted, nil
}
