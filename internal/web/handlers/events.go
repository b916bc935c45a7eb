package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eventfoto/face-indexer/internal/cache"
	"github.com/eventfoto/face-indexer/internal/constants"
	"github.com/eventfoto/face-indexer/internal/photostore"
)

// EventBrowser is the slice of the photo store the browse endpoints consume.
type EventBrowser interface {
	ListEvents(ctx context.Context) ([]string, error)
	EventStructure(ctx context.Context, eventID string) (*photostore.Structure, error)
	ListCollections(ctx context.Context, eventID, day string) ([]photostore.Collection, error)
	ListPhotos(ctx context.Context, folderPath string) ([]photostore.PhotoDescriptor, error)
	EnumerateEvent(ctx context.Context, eventID string) ([]photostore.PhotoDescriptor, error)
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// EventsHandler serves the event browsing endpoints backed by the cache.
type EventsHandler struct {
	store EventBrowser
	cache *cache.EventCache
}

func NewEventsHandler(store EventBrowser, eventCache *cache.EventCache) *EventsHandler {
	return &EventsHandler{store: store, cache: eventCache}
}

// List returns the event folder names at the bucket root.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	key := cache.Key("events", "list")
	if cached, ok := h.cache.Get(key); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	events, err := h.store.ListEvents(r.Context())
	if err != nil {
		log.Printf("Failed to list events: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	payload := map[string]any{"events": events}
	h.cache.Set(key, payload, constants.EventListTTL*time.Second)
	respondJSON(w, http.StatusOK, payload)
}

// Get returns the structure of one event: whether it is multi-day and which
// day folders it has.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	key := cache.Key("event", eventID, "structure")
	if cached, ok := h.cache.Get(key); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	structure, err := h.store.EventStructure(r.Context(), eventID)
	if err != nil {
		log.Printf("Failed to inspect event %s: %v", sanitizeForLog(eventID), err)
		respondError(w, http.StatusInternalServerError, "failed to inspect event")
		return
	}

	h.cache.Set(key, structure, constants.EventStructureTTL*time.Second)
	respondJSON(w, http.StatusOK, structure)
}

// Collections returns the photo collections of an event, optionally scoped to
// one day of a multi-day event via the day query parameter.
func (h *EventsHandler) Collections(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	day := r.URL.Query().Get("day")

	key := cache.Key("event", eventID, "collections", day)
	if cached, ok := h.cache.Get(key); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	collections, err := h.store.ListCollections(r.Context(), eventID, day)
	if err != nil {
		log.Printf("Failed to list collections for %s: %v", sanitizeForLog(eventID), err)
		respondError(w, http.StatusInternalServerError, "failed to list collections")
		return
	}

	payload := map[string]any{"collections": collections}
	h.cache.Set(key, payload, constants.EventStructureTTL*time.Second)
	respondJSON(w, http.StatusOK, payload)
}

// PhotoView is one photo in a listing, with a presigned download URL.
type PhotoView struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// PhotoPage is one page of a photo listing.
type PhotoPage struct {
	Photos []PhotoView `json:"photos"`
	Total  int         `json:"total"`
	Page   int         `json:"page"`
	Pages  int         `json:"pages"`
}

// Photos lists the photos under one folder of the event with presigned URLs.
// The path query parameter selects the folder and must stay inside the event.
func (h *EventsHandler) Photos(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	folder := r.URL.Query().Get("path")
	if folder == "" {
		folder = eventID
	}
	if folder != eventID && !strings.HasPrefix(folder, eventID+"/") {
		respondError(w, http.StatusBadRequest, "path must be inside the event")
		return
	}
	if strings.Contains(folder, "..") {
		respondError(w, http.StatusBadRequest, "invalid path")
		return
	}

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}

	listKey := cache.Key("event", eventID, "photos", folder)
	var photos []photostore.PhotoDescriptor
	if cached, ok := h.cache.Get(listKey); ok {
		photos = cached.([]photostore.PhotoDescriptor)
	} else {
		var err error
		photos, err = h.store.ListPhotos(r.Context(), folder)
		if err != nil {
			log.Printf("Failed to list photos under %s: %v", sanitizeForLog(folder), err)
			respondError(w, http.StatusInternalServerError, "failed to list photos")
			return
		}
		h.cache.Set(listKey, photos, constants.PhotoListTTL*time.Second)
	}

	pageSize := constants.DefaultPageSize
	pages := (len(photos) + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > len(photos) {
		start = len(photos)
	}
	end := start + pageSize
	if end > len(photos) {
		end = len(photos)
	}

	views := make([]PhotoView, 0, end-start)
	for _, photo := range photos[start:end] {
		view := PhotoView{Name: photo.Name, Key: photo.Key, Size: photo.Size}
		// presigned URLs are per request, they never enter the cache
		if url, err := h.store.PresignGet(r.Context(), photo.Key, 2*time.Hour); err == nil {
			view.URL = url
		}
		views = append(views, view)
	}

	respondJSON(w, http.StatusOK, PhotoPage{
		Photos: views,
		Total:  len(photos),
		Page:   page,
		Pages:  pages,
	})
}
