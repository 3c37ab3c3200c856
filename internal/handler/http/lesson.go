package http

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nvoisard/bilingo/internal/errors"
	"github.com/nvoisard/bilingo/internal/lang"
	"github.com/nvoisard/bilingo/internal/service"
	"github.com/nvoisard/bilingo/internal/tutor"
	"github.com/nvoisard/bilingo/pkg/response"
)

// LessonHandler handles the voice lesson endpoints.
type LessonHandler struct {
	log     zerolog.Logger
	lessons *service.LessonService
}

// NewLessonHandler creates a new lesson handler.
func NewLessonHandler(log zerolog.Logger, lessons *service.LessonService) *LessonHandler {
	return &LessonHandler{
		log:     log,
		lessons: lessons,
	}
}

// startReply mirrors the wire shape of POST /start.
type startReply struct {
	SessionID string `json:"session_id"`
	Response  struct {
		Segments []tutor.Segment `json:"segments"`
	} `json:"response"`
	AudioSegments []tutor.AudioSegment `json:"audio_segments"`
}

// chatReply mirrors the wire shape of POST /chat. Pronunciation and
// analysis are omitted entirely when a stage did not produce them.
type chatReply struct {
	UserText      string               `json:"user_text"`
	Pronunciation *tutor.Pronunciation `json:"pronunciation,omitempty"`
	UserAnalysis  *tutor.Analysis      `json:"user_analysis,omitempty"`
	Segments      []tutor.Segment      `json:"segments"`
	AudioSegments []tutor.AudioSegment `json:"audio_segments"`
}

// Start handles POST /start
//
// Request: form fields "source_lang", "target_lang", "level"
// Response: { "session_id": "...", "response": { "segments": [...] }, "audio_segments": [...] }
func (h *LessonHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.handleError(w, errors.Validation("failed to parse form"))
		return
	}

	native, target, level, err := lessonParams(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	result, err := h.lessons.StartLesson(ctx, native, target, level)
	if err != nil {
		h.handleError(w, err)
		return
	}

	reply := startReply{SessionID: result.SessionID}
	reply.Response.Segments = result.Greeting
	reply.AudioSegments = result.Audio
	if reply.AudioSegments == nil {
		reply.AudioSegments = []tutor.AudioSegment{}
	}

	response.JSON(w, http.StatusOK, reply)
}

// Chat handles POST /chat
//
// Request: multipart/form-data with an "audio" file plus the fields
// "source_lang", "target_lang", "level" and the optional "session_id"
// and "api_version".
// Response: { "user_text": "...", "pronunciation": {...}, "user_analysis": {...},
// "segments": [...], "audio_segments": [...] }
func (h *LessonHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse multipart form (10 MB max)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.handleError(w, errors.Validation("failed to parse multipart form"))
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		h.handleError(w, errors.Validation("audio file is required"))
		return
	}
	defer file.Close()

	audioData, err := io.ReadAll(file)
	if err != nil {
		h.handleError(w, errors.Validation("failed to read audio file"))
		return
	}

	native, target, level, err := lessonParams(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	// Clients that do not track a session still get exercise
	// continuity within this one request.
	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if v := r.FormValue("api_version"); v != "" {
		h.log.Debug().Str("api_version", v).Str("session_id", sessionID).Msg("client api version")
	}

	result, err := h.lessons.SubmitTurn(ctx, sessionID, audioData, native, target, level)
	if err != nil {
		h.handleError(w, err)
		return
	}

	reply := chatReply{
		UserText:      result.UserText,
		Pronunciation: result.Pronunciation,
		UserAnalysis:  result.Analysis,
		Segments:      result.Segments,
		AudioSegments: result.Audio,
	}
	if reply.Segments == nil {
		reply.Segments = []tutor.Segment{}
	}
	if reply.AudioSegments == nil {
		reply.AudioSegments = []tutor.AudioSegment{}
	}

	response.JSON(w, http.StatusOK, reply)
}

// lessonParams reads and validates the language pair and level shared
// by both lesson endpoints. An absent level falls back to A1.
func lessonParams(r *http.Request) (native, target lang.Code, level string, err error) {
	native = lang.Code(r.FormValue("source_lang"))
	target = lang.Code(r.FormValue("target_lang"))
	level = r.FormValue("level")
	if level == "" {
		level = "A1"
	}

	if err := lang.ValidatePair(native, target); err != nil {
		return "", "", "", errors.Validation(err.Error())
	}
	if !lang.ValidLevel(level) {
		return "", "", "", errors.Validation("unknown proficiency level: " + level)
	}
	return native, target, level, nil
}

func (h *LessonHandler) handleError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		response.Error(w, appErr.HTTPStatus(), appErr.Message)
		return
	}
	h.log.Error().Err(err).Msg("Internal server error")
	response.InternalError(w, "internal server error")
}
