package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eventfoto/face-indexer/internal/indexer"
	"github.com/eventfoto/face-indexer/internal/photostore"
	"github.com/eventfoto/face-indexer/internal/recognition"
)

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}

// stubIndexing is a scripted IndexingService for handler tests.
type stubIndexing struct {
	startErr    error
	cancelErr   error
	statsErr    error
	cleanupErr  error
	progress    indexer.Progress
	stats       *indexer.Statistics
	cleanedUp   int64
	lastEventID string
}

func (s *stubIndexing) StartIndexing(eventID string) (indexer.Progress, error) {
	s.lastEventID = eventID
	if s.startErr != nil {
		return indexer.Progress{}, s.startErr
	}
	return s.progress, nil
}

func (s *stubIndexing) GetProgress(eventID string) indexer.Progress {
	s.lastEventID = eventID
	return s.progress
}

func (s *stubIndexing) CancelIndexing(eventID string) error {
	s.lastEventID = eventID
	return s.cancelErr
}

func (s *stubIndexing) GetStatistics(ctx context.Context, eventID string) (*indexer.Statistics, error) {
	s.lastEventID = eventID
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	return s.stats, nil
}

func (s *stubIndexing) Cleanup(ctx context.Context, eventID string) (int64, error) {
	s.lastEventID = eventID
	if s.cleanupErr != nil {
		return 0, s.cleanupErr
	}
	return s.cleanedUp, nil
}

// stubBrowser is a scripted EventBrowser for handler tests.
type stubBrowser struct {
	events      []string
	structure   *photostore.Structure
	collections []photostore.Collection
	photos      []photostore.PhotoDescriptor
	listErr     error
	listCalls   int
}

func (s *stubBrowser) ListEvents(ctx context.Context) ([]string, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.events, nil
}

func (s *stubBrowser) EventStructure(ctx context.Context, eventID string) (*photostore.Structure, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.structure, nil
}

func (s *stubBrowser) ListCollections(ctx context.Context, eventID, day string) ([]photostore.Collection, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.collections, nil
}

func (s *stubBrowser) ListPhotos(ctx context.Context, folderPath string) ([]photostore.PhotoDescriptor, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.photos, nil
}

func (s *stubBrowser) EnumerateEvent(ctx context.Context, eventID string) ([]photostore.PhotoDescriptor, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.photos, nil
}

func (s *stubBrowser) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://store.example.com/" + key, nil
}

// stubSearcher is a scripted FaceSearcher for handler tests.
type stubSearcher struct {
	matches        []recognition.Match
	err            error
	lastCollection string
}

func (s *stubSearcher) SearchByImage(ctx context.Context, collectionID string, image []byte, maxMatches int) ([]recognition.Match, error) {
	s.lastCollection = collectionID
	if s.err != nil {
		return nil, s.err
	}
	return s.matches, nil
}
