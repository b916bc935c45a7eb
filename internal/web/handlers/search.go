package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eventfoto/face-indexer/internal/codec"
	"github.com/eventfoto/face-indexer/internal/normalize"
	"github.com/eventfoto/face-indexer/internal/recognition"
)

// maxSelfieBytes bounds the uploaded selfie size.
const maxSelfieBytes = 15 << 20

// FaceSearcher finds collection faces matching an uploaded image.
type FaceSearcher interface {
	SearchByImage(ctx context.Context, collectionID string, image []byte, maxMatches int) ([]recognition.Match, error)
}

// SearchHandler serves the guest selfie search.
type SearchHandler struct {
	faces            FaceSearcher
	store            EventBrowser
	collectionPrefix string
}

func NewSearchHandler(faces FaceSearcher, store EventBrowser, collectionPrefix string) *SearchHandler {
	return &SearchHandler{faces: faces, store: store, collectionPrefix: collectionPrefix}
}

// MatchView is one matched photo in a search response.
type MatchView struct {
	PhotoID    string  `json:"photo_id"`
	Similarity float32 `json:"similarity"`
	URL        string  `json:"url,omitempty"`
}

// Search accepts a selfie upload and returns the event photos the person
// appears in, ordered by similarity. Non JPEG/PNG uploads are transcoded
// before submission.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	collection := normalize.CollectionID(h.collectionPrefix + eventID)
	if collection == "" {
		respondError(w, http.StatusBadRequest, "event id is empty or unusable")
		return
	}

	if err := r.ParseMultipartForm(maxSelfieBytes); err != nil {
		respondError(w, http.StatusBadRequest, "expected multipart form with a selfie file")
		return
	}
	file, _, err := r.FormFile("selfie")
	if err != nil {
		respondError(w, http.StatusBadRequest, "selfie file is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxSelfieBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read selfie")
		return
	}

	switch http.DetectContentType(image) {
	case "image/jpeg", "image/png":
	default:
		converted, err := codec.ToJPEG(image)
		if err != nil {
			respondError(w, http.StatusBadRequest, "selfie is not a supported image")
			return
		}
		image = converted
	}

	matches, err := h.faces.SearchByImage(r.Context(), collection, image, 0)
	if err != nil {
		log.Printf("Selfie search failed for %s: %v", sanitizeForLog(eventID), err)
		respondError(w, http.StatusInternalServerError, "search failed")
		return
	}

	views := make([]MatchView, 0, len(matches))
	keys := h.photoKeysByID(r.Context(), eventID)
	for _, match := range matches {
		view := MatchView{PhotoID: match.ExternalImageID, Similarity: match.Similarity}
		if key, ok := keys[match.ExternalImageID]; ok {
			if url, err := h.store.PresignGet(r.Context(), key, 2*time.Hour); err == nil {
				view.URL = url
			}
		}
		views = append(views, view)
	}

	respondJSON(w, http.StatusOK, map[string]any{"matches": views})
}

// photoKeysByID maps canonical photo ids back to object keys so matches can
// carry download URLs. Lookup failures degrade to URL-less matches.
func (h *SearchHandler) photoKeysByID(ctx context.Context, eventID string) map[string]string {
	photos, err := h.store.EnumerateEvent(ctx, eventID)
	if err != nil {
		log.Printf("Failed to enumerate %s for match URLs: %v", sanitizeForLog(eventID), err)
		return nil
	}

	keys := make(map[string]string, len(photos))
	for _, photo := range photos {
		id := normalize.ExternalImageID(photo.Name)
		if id == "" {
			continue
		}
		if _, taken := keys[id]; !taken {
			keys[id] = photo.Key
		}
	}
	return keys
}
