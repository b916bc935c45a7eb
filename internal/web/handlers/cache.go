package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventfoto/face-indexer/internal/cache"
)

// CacheHandler exposes the admin cache controls.
type CacheHandler struct {
	cache *cache.EventCache
}

func NewCacheHandler(eventCache *cache.EventCache) *CacheHandler {
	return &CacheHandler{cache: eventCache}
}

// Stats reports the cache size.
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cache.Stats())
}

// Flush drops every cached entry.
func (h *CacheHandler) Flush(w http.ResponseWriter, r *http.Request) {
	h.cache.Flush()
	respondJSON(w, http.StatusOK, map[string]bool{"flushed": true})
}

// InvalidateEvent drops the cached entries of one event.
func (h *CacheHandler) InvalidateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	removed := h.cache.InvalidateEvent(eventID)
	respondJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
