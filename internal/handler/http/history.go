package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/nvoisard/bilingo/internal/repository"
	"github.com/nvoisard/bilingo/pkg/response"
)

// HistoryHandler serves recorded lesson turns. It is mounted only when
// a database is configured.
type HistoryHandler struct {
	log   zerolog.Logger
	turns repository.TurnRepository
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(log zerolog.Logger, turns repository.TurnRepository) *HistoryHandler {
	return &HistoryHandler{
		log:   log,
		turns: turns,
	}
}

// List handles GET /history/{session_id}
//
// Query param: limit (optional, defaults to 50)
// Response: { "session_id": "...", "turns": [...] }
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := chi.URLParam(r, "session_id")
	if sessionID == "" {
		response.BadRequest(w, "session_id is required")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			response.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	turns, err := h.turns.ListBySession(ctx, sessionID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID).Msg("failed to list turns")
		response.InternalError(w, "failed to load history")
		return
	}
	if turns == nil {
		turns = []repository.Turn{}
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"turns":      turns,
	})
}
