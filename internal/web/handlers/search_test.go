package handlers

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eventfoto/face-indexer/internal/photostore"
	"github.com/eventfoto/face-indexer/internal/recognition"
)

func selfieRequest(t *testing.T, eventID string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("selfie", "selfie.img")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write(data)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/events/"+eventID+"/search", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return requestWithChiParams(req, map[string]string{"eventID": eventID})
}

func pngSelfie(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func TestSearchReturnsMatchesWithURLs(t *testing.T) {
	searcher := &stubSearcher{
		matches: []recognition.Match{
			{ExternalImageID: "IMG_0042.jpg", Similarity: 99.1},
			{ExternalImageID: "IMG_0099.jpg", Similarity: 87.5},
		},
	}
	browser := &stubBrowser{
		photos: []photostore.PhotoDescriptor{
			{Key: "gala/main/IMG_0042.jpg", Name: "IMG_0042.jpg", Path: "gala/main"},
		},
	}
	handler := NewSearchHandler(searcher, browser, "evento-")

	rec := httptest.NewRecorder()
	handler.Search(rec, selfieRequest(t, "gala", pngSelfie(t)))

	assertStatusCode(t, rec, http.StatusOK)
	if searcher.lastCollection != "evento-gala" {
		t.Errorf("expected collection evento-gala, got %s", searcher.lastCollection)
	}

	var result map[string][]MatchView
	parseJSONResponse(t, rec, &result)
	matches := result["matches"]
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].URL == "" {
		t.Error("expected URL for photo present in the store")
	}
	if matches[1].URL != "" {
		t.Error("expected no URL for photo missing from the store")
	}
}

func TestSearchTranscodesNonNativeUpload(t *testing.T) {
	searcher := &stubSearcher{}
	handler := NewSearchHandler(searcher, &stubBrowser{}, "")

	img := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode GIF: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.Search(rec, selfieRequest(t, "gala", buf.Bytes()))

	assertStatusCode(t, rec, http.StatusOK)
}

func TestSearchRejectsGarbageUpload(t *testing.T) {
	handler := NewSearchHandler(&stubSearcher{}, &stubBrowser{}, "")

	rec := httptest.NewRecorder()
	handler.Search(rec, selfieRequest(t, "gala", []byte("definitely not an image")))

	assertStatusCode(t, rec, http.StatusBadRequest)
}

func TestSearchRequiresSelfieFile(t *testing.T) {
	handler := NewSearchHandler(&stubSearcher{}, &stubBrowser{}, "")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("note", "no file here")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/events/gala/search", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = requestWithChiParams(req, map[string]string{"eventID": "gala"})

	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	assertStatusCode(t, rec, http.StatusBadRequest)
	assertJSONError(t, rec, "selfie file is required")
}

func TestSearchServiceError(t *testing.T) {
	handler := NewSearchHandler(&stubSearcher{err: errors.New("throttled")}, &stubBrowser{}, "")

	rec := httptest.NewRecorder()
	handler.Search(rec, selfieRequest(t, "gala", pngSelfie(t)))

	assertStatusCode(t, rec, http.StatusInternalServerError)
}
