package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventfoto/face-indexer/internal/indexer"
)

// IndexingService is the slice of the indexer the web layer drives.
type IndexingService interface {
	StartIndexing(eventID string) (indexer.Progress, error)
	GetProgress(eventID string) indexer.Progress
	CancelIndexing(eventID string) error
	GetStatistics(ctx context.Context, eventID string) (*indexer.Statistics, error)
	Cleanup(ctx context.Context, eventID string) (int64, error)
}

// IndexingHandler exposes indexing runs over HTTP.
type IndexingHandler struct {
	service IndexingService
}

func NewIndexingHandler(service IndexingService) *IndexingHandler {
	return &IndexingHandler{service: service}
}

// Start launches a background run for the event. Returns 202 with the initial
// progress, or 409 while a run for the same event is active.
func (h *IndexingHandler) Start(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	progress, err := h.service.StartIndexing(eventID)
	switch {
	case errors.Is(err, indexer.ErrConflict):
		respondError(w, http.StatusConflict, "indexing already running for this event")
		return
	case errors.Is(err, indexer.ErrEmptyEventID):
		respondError(w, http.StatusBadRequest, "event id is empty or unusable")
		return
	case err != nil:
		log.Printf("Failed to start indexing for %s: %v", sanitizeForLog(eventID), err)
		respondError(w, http.StatusInternalServerError, "failed to start indexing")
		return
	}

	respondJSON(w, http.StatusAccepted, progress)
}

// Progress reports the latest run state for the event. Events never indexed
// in this process report idle.
func (h *IndexingHandler) Progress(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	respondJSON(w, http.StatusOK, h.service.GetProgress(eventID))
}

// Cancel requests cancellation of the event's active run.
func (h *IndexingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	if err := h.service.CancelIndexing(eventID); err != nil {
		if errors.Is(err, indexer.ErrNotRunning) {
			respondError(w, http.StatusConflict, "no indexing run is active for this event")
			return
		}
		log.Printf("Failed to cancel indexing for %s: %v", sanitizeForLog(eventID), err)
		respondError(w, http.StatusInternalServerError, "failed to cancel indexing")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

// Statistics reports the durable indexing state of an event.
func (h *IndexingHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	stats, err := h.service.GetStatistics(r.Context(), eventID)
	if err != nil {
		log.Printf("Failed to load statistics for %s: %v", sanitizeForLog(eventID), err)
		respondError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// Cleanup deletes records whose source photo no longer exists in the store.
func (h *IndexingHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	deleted, err := h.service.Cleanup(r.Context(), eventID)
	if err != nil {
		log.Printf("Cleanup failed for %s: %v", sanitizeForLog(eventID), err)
		respondError(w, http.StatusInternalServerError, "cleanup failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
