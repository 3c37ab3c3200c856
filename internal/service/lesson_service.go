package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nvoisard/bilingo/internal/audiocache"
	"github.com/nvoisard/bilingo/internal/client"
	"github.com/nvoisard/bilingo/internal/errors"
	"github.com/nvoisard/bilingo/internal/lang"
	"github.com/nvoisard/bilingo/internal/tutor"
)

// Transcriber converts captured audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (*client.TranscriptionResult, error)
}

// PronunciationAnalyzer scores audio against a reference text with
// word-level alignment.
type PronunciationAnalyzer interface {
	AnalyzePronunciation(ctx context.Context, audio []byte, referenceText, language string) (*client.PronunciationResult, error)
}

// ChatModel generates lesson text from a system and user prompt.
type ChatModel interface {
	ChatWithSystem(ctx context.Context, system, user string) (string, error)
}

// Synthesizer renders one text segment as speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, language lang.Code) ([]byte, error)
}

// TurnRecorder persists completed exchanges.
type TurnRecorder interface {
	RecordTurn(ctx context.Context, sessionID, userText string, segments []tutor.Segment) error
}

// StartResult is the payload of a successfully opened lesson.
type StartResult struct {
	SessionID string
	Greeting  []tutor.Segment
	Audio     []tutor.AudioSegment
}

// ChatResult is the payload of one completed exchange.
type ChatResult struct {
	UserText      string
	Pronunciation *tutor.Pronunciation
	Analysis      *tutor.Analysis
	Segments      []tutor.Segment
	Audio         []tutor.AudioSegment
}

// LessonService runs the lesson pipeline: transcribe the utterance,
// generate the bilingual reply, score pronunciation against the current
// exercise, and render each reply segment as audio. Only transcription
// and reply generation are load-bearing; every other stage degrades
// independently.
type LessonService struct {
	stt       Transcriber
	analyzer  PronunciationAnalyzer
	llm       ChatModel
	tts       Synthesizer
	clips     audiocache.Store
	exercises ExerciseStore
	turns     TurnRecorder
	log       zerolog.Logger
}

// NewLessonService creates a lesson service. analyzer and turns may be
// nil; those stages are skipped or replaced by fallbacks.
func NewLessonService(
	stt Transcriber,
	analyzer PronunciationAnalyzer,
	llm ChatModel,
	tts Synthesizer,
	clips audiocache.Store,
	exercises ExerciseStore,
	turns TurnRecorder,
	log zerolog.Logger,
) *LessonService {
	return &LessonService{
		stt:       stt,
		analyzer:  analyzer,
		llm:       llm,
		tts:       tts,
		clips:     clips,
		exercises: exercises,
		turns:     turns,
		log:       log,
	}
}

// StartLesson opens a session: it asks the model for a bilingual
// greeting with a first exercise and renders the greeting audio.
func (s *LessonService) StartLesson(ctx context.Context, native, target lang.Code, level string) (*StartResult, error) {
	if s.llm == nil {
		return nil, errors.New(errors.ErrAIService, "language model not configured")
	}

	sessionID := uuid.NewString()

	system, user := BuildGreetingPrompt(native, target, level)
	content, err := s.llm.ChatWithSystem(ctx, system, user)
	if err != nil {
		return nil, errors.Wrap(errors.ErrAIService, "failed to generate greeting", err)
	}

	segments, _ := parseLesson(content)
	if len(segments) == 0 {
		return nil, errors.New(errors.ErrAIService, "model produced no greeting")
	}

	s.saveExercise(ctx, sessionID, segments, target)
	audio := s.renderAudio(ctx, segments)

	s.log.Info().Str("session_id", sessionID).
		Str("native", string(native)).Str("target", string(target)).Str("level", level).
		Int("segments", len(segments)).Int("clips", len(audio)).
		Msg("lesson started")

	return &StartResult{SessionID: sessionID, Greeting: segments, Audio: audio}, nil
}

// SubmitTurn runs one exchange for an existing session.
func (s *LessonService) SubmitTurn(ctx context.Context, sessionID string, audio []byte, native, target lang.Code, level string) (*ChatResult, error) {
	if s.stt == nil {
		return nil, errors.New(errors.ErrSTTService, "speech recognition not configured")
	}
	if s.llm == nil {
		return nil, errors.New(errors.ErrAIService, "language model not configured")
	}

	transcription, err := s.stt.Transcribe(ctx, audio, string(target))
	if err != nil {
		return nil, errors.Wrap(errors.ErrSTTService, "failed to transcribe audio", err)
	}
	userText := strings.TrimSpace(transcription.Text)
	if userText == "" {
		return nil, errors.New(errors.ErrValidation, "no speech detected")
	}
	s.log.Debug().Str("session_id", sessionID).Str("user_text", userText).Msg("utterance transcribed")

	pronunciation := s.scorePronunciation(ctx, sessionID, audio, userText, target)

	system, user := BuildLessonPrompt(native, target, level, userText)
	content, err := s.llm.ChatWithSystem(ctx, system, user)
	if err != nil {
		return nil, errors.Wrap(errors.ErrAIService, "failed to generate lesson", err)
	}

	segments, analysis := parseLesson(content)
	if len(segments) == 0 {
		return nil, errors.New(errors.ErrAIService, "model produced no reply segments")
	}

	s.saveExercise(ctx, sessionID, segments, target)
	clips := s.renderAudio(ctx, segments)

	if s.turns != nil {
		if err := s.turns.RecordTurn(ctx, sessionID, userText, segments); err != nil {
			s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to record turn")
		}
	}

	s.log.Info().Str("session_id", sessionID).
		Int("segments", len(segments)).Int("clips", len(clips)).
		Bool("pronunciation", pronunciation != nil).Bool("analysis", analysis != nil).
		Msg("turn completed")

	return &ChatResult{
		UserText:      userText,
		Pronunciation: pronunciation,
		Analysis:      analysis,
		Segments:      segments,
		Audio:         clips,
	}, nil
}

// scorePronunciation evaluates the utterance against the session's last
// exercise. It prefers the aligned analysis server and falls back to
// text comparison; any failure just means no score this turn.
func (s *LessonService) scorePronunciation(ctx context.Context, sessionID string, audio []byte, userText string, target lang.Code) *tutor.Pronunciation {
	if s.exercises == nil {
		return nil
	}
	exercise, ok, err := s.exercises.Get(ctx, sessionID)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to load exercise context")
		return nil
	}
	if !ok || exercise.Lang != target || exercise.Text == "" {
		return nil
	}

	if s.analyzer != nil {
		result, err := s.analyzer.AnalyzePronunciation(ctx, audio, exercise.Text, string(target))
		if err == nil {
			return alignedPronunciation(result)
		}
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("aligned analysis failed, falling back to comparison")
	}
	return ComparePronunciation(exercise.Text, userText)
}

// saveExercise remembers the first target-language segment as the next
// exercise. Failures are logged and ignored; scoring is optional.
func (s *LessonService) saveExercise(ctx context.Context, sessionID string, segments []tutor.Segment, target lang.Code) {
	if s.exercises == nil {
		return
	}
	for _, seg := range segments {
		if seg.Lang != target {
			continue
		}
		ex := Exercise{Text: seg.Text, Lang: seg.Lang}
		if err := s.exercises.Save(ctx, sessionID, ex); err != nil {
			s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to save exercise context")
		}
		return
	}
}

// renderAudio synthesizes and stores one clip per segment. A segment
// whose synthesis or storage fails is skipped; the turn still carries
// its text.
func (s *LessonService) renderAudio(ctx context.Context, segments []tutor.Segment) []tutor.AudioSegment {
	if s.tts == nil || s.clips == nil {
		return nil
	}

	batch := uuid.NewString()
	var out []tutor.AudioSegment
	for i, seg := range segments {
		data, err := s.tts.Synthesize(ctx, seg.Text, seg.Lang)
		if err != nil {
			s.log.Warn().Err(err).Int("segment", i).Str("lang", string(seg.Lang)).Msg("tts failed, skipping clip")
			continue
		}
		name := fmt.Sprintf("%s_%d.mp3", batch, i)
		url, err := s.clips.Save(ctx, name, data)
		if err != nil {
			s.log.Warn().Err(err).Str("clip", name).Msg("failed to store clip")
			continue
		}
		out = append(out, tutor.AudioSegment{Lang: seg.Lang, AudioURL: url})
	}
	return out
}

// lessonPayload is what the model is asked to emit. correction/response
// are the flat keys older prompts used; they are honored as a fallback.
type lessonPayload struct {
	Segments     []tutor.Segment `json:"segments"`
	UserAnalysis *tutor.Analysis `json:"user_analysis"`
	Correction   string          `json:"correction"`
	Response     string          `json:"response"`
}

// parseLesson turns raw model output into cleaned, language-tagged
// segments plus the optional analysis. When the output carries no JSON
// at all, the whole cleaned text becomes a single segment so the
// learner still gets a reply.
func parseLesson(content string) ([]tutor.Segment, *tutor.Analysis) {
	raw, ok := ExtractJSON(content)
	if !ok {
		return fallbackSegments(content), nil
	}

	var payload lessonPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return fallbackSegments(content), nil
	}

	segments := sanitizeSegments(payload.Segments)
	analysis := payload.UserAnalysis

	// Older flat shape: response carries the reply, correction the fix.
	if len(segments) == 0 && payload.Response != "" {
		segments = fallbackSegments(payload.Response)
	}
	if analysis == nil && payload.Correction != "" {
		correction := strings.TrimSpace(payload.Correction)
		analysis = &tutor.Analysis{
			IsCorrect:     strings.EqualFold(strings.TrimSuffix(correction, "."), tutor.NoCorrectionSentinel),
			CorrectedText: correction,
		}
	}
	return segments, analysis
}

// sanitizeSegments cleans segment text for synthesis, drops empties and
// re-tags segments whose language tag is not one the system supports.
func sanitizeSegments(segments []tutor.Segment) []tutor.Segment {
	out := make([]tutor.Segment, 0, len(segments))
	for _, seg := range segments {
		text := CleanTextForSpeech(seg.Text)
		if text == "" {
			continue
		}
		code := seg.Lang
		if !lang.Supported(code) {
			code = DetectTextLanguage(text)
		}
		out = append(out, tutor.Segment{Lang: code, Text: text})
	}
	return out
}

func fallbackSegments(content string) []tutor.Segment {
	text := CleanTextForSpeech(content)
	if text == "" {
		return nil
	}
	return []tutor.Segment{{Lang: DetectTextLanguage(text), Text: text}}
}
