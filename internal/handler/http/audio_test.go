package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/nvoisard/bilingo/internal/audiocache"
)

func TestAudioClipServing(t *testing.T) {
	store, err := audiocache.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(context.Background(), "clip.mp3", []byte("ID3 audio bytes")); err != nil {
		t.Fatal(err)
	}

	router := chi.NewRouter()
	router.Get("/audio/{clip}", NewAudioHandler(zerolog.Nop(), store).Clip)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audio/clip.mp3", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ID3 audio bytes" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audio/missing.mp3", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a missing clip, got %d", rec.Code)
	}

	// Names that escape the cache directory are rejected outright.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audio/secret..mp3", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an escaping name, got %d", rec.Code)
	}
}
