package http

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/nvoisard/bilingo/internal/audiocache"
	"github.com/nvoisard/bilingo/pkg/response"
)

// AudioHandler serves synthesized clips from the local cache. It is
// mounted only when clips are stored on disk; object storage serves
// them by public URL instead.
type AudioHandler struct {
	log   zerolog.Logger
	store *audiocache.DiskStore
}

// NewAudioHandler creates a new audio handler.
func NewAudioHandler(log zerolog.Logger, store *audiocache.DiskStore) *AudioHandler {
	return &AudioHandler{
		log:   log,
		store: store,
	}
}

// Clip handles GET /audio/{clip}
func (h *AudioHandler) Clip(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "clip")

	path, err := h.store.Path(name)
	if err != nil {
		response.NotFound(w, "unknown clip")
		return
	}
	if _, err := os.Stat(path); err != nil {
		response.NotFound(w, "unknown clip")
		return
	}

	http.ServeFile(w, r, path)
}
