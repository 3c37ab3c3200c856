package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nvoisard/bilingo/internal/errors"
	"github.com/nvoisard/bilingo/internal/lang"
	"github.com/nvoisard/bilingo/internal/tutor"
)

// Backend talks to the lesson gateway over its form/multipart HTTP
// contract. It satisfies the session controller's API interface.
type Backend struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	log        zerolog.Logger
}

// NewBackend creates a gateway client. apiVersion is forwarded verbatim
// on /chat when non-empty.
func NewBackend(baseURL, apiVersion string, timeout time.Duration, log zerolog.Logger) *Backend {
	return &Backend{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiVersion: apiVersion,
		log:        log,
	}
}

type startResponse struct {
	SessionID string `json:"session_id"`
	Response  struct {
		Segments []tutor.Segment `json:"segments"`
	} `json:"response"`
	AudioSegments []tutor.AudioSegment `json:"audio_segments"`
}

type chatResponse struct {
	UserText      string               `json:"user_text"`
	Pronunciation json.RawMessage      `json:"pronunciation"`
	UserAnalysis  json.RawMessage      `json:"user_analysis"`
	Segments      []tutor.Segment      `json:"segments"`
	AudioSegments []tutor.AudioSegment `json:"audio_segments"`
}

// StartSession opens a lesson for the given pair and level. It returns
// the gateway's session identifier and the greeting turn.
func (b *Backend) StartSession(ctx context.Context, native, target lang.Code, level string) (string, tutor.Turn, error) {
	form := url.Values{}
	form.Set("source_lang", string(native))
	form.Set("target_lang", string(target))
	form.Set("level", level)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/start", strings.NewReader(form.Encode()))
	if err != nil {
		return "", tutor.Turn{}, errors.Wrap(errors.ErrTransport, "failed to create start request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", tutor.Turn{}, errors.Wrap(errors.ErrTransport, "start request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", tutor.Turn{}, b.statusError("start", resp)
	}

	var payload startResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", tutor.Turn{}, errors.Wrap(errors.ErrTransport, "failed to decode start response", err)
	}

	b.log.Debug().Str("session_id", payload.SessionID).
		Int("segments", len(payload.Response.Segments)).
		Msg("session opened")

	turn := tutor.Turn{
		Segments:      payload.Response.Segments,
		AudioSegments: payload.AudioSegments,
	}
	return payload.SessionID, turn, nil
}

// SubmitTurn uploads one utterance with the session parameters and
// returns the tutor's reply. Optional reply features that fail to
// decode are dropped individually; the rest of the turn still renders.
func (b *Backend) SubmitTurn(ctx context.Context, session tutor.Session, audio []byte) (tutor.Turn, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("audio", "utterance.wav")
	if err != nil {
		return tutor.Turn{}, errors.Wrap(errors.ErrTransport, "failed to build upload", err)
	}
	if _, err := part.Write(audio); err != nil {
		return tutor.Turn{}, errors.Wrap(errors.ErrTransport, "failed to build upload", err)
	}

	fields := map[string]string{
		"source_lang": string(session.NativeLang),
		"target_lang": string(session.TargetLang),
		"level":       session.Level,
	}
	if session.ID != "" {
		fields["session_id"] = session.ID
	}
	if b.apiVersion != "" {
		fields["api_version"] = b.apiVersion
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return tutor.Turn{}, errors.Wrap(errors.ErrTransport, "failed to build upload", err)
		}
	}
	if err := writer.Close(); err != nil {
		return tutor.Turn{}, errors.Wrap(errors.ErrTransport, "failed to build upload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat", body)
	if err != nil {
		return tutor.Turn{}, errors.Wrap(errors.ErrTransport, "failed to create chat request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return tutor.Turn{}, errors.Wrap(errors.ErrTransport, "chat request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tutor.Turn{}, b.statusError("chat", resp)
	}

	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return tutor.Turn{}, errors.Wrap(errors.ErrTransport, "failed to decode chat response", err)
	}

	turn := tutor.Turn{
		UserText:      payload.UserText,
		Segments:      payload.Segments,
		AudioSegments: payload.AudioSegments,
	}

	// Optional reply features degrade one by one: a malformed block is
	// dropped with a warning instead of sinking the whole turn.
	if present(payload.Pronunciation) {
		var pron tutor.Pronunciation
		if err := json.Unmarshal(payload.Pronunciation, &pron); err != nil {
			b.log.Warn().Err(err).Msg("dropping malformed pronunciation payload")
		} else {
			turn.Pronunciation = &pron
		}
	}
	if present(payload.UserAnalysis) {
		var analysis tutor.Analysis
		if err := json.Unmarshal(payload.UserAnalysis, &analysis); err != nil {
			b.log.Warn().Err(err).Msg("dropping malformed analysis payload")
		} else {
			turn.Analysis = &analysis
		}
	}

	b.log.Debug().Str("session_id", session.ID).
		Int("segments", len(turn.Segments)).
		Int("audio_segments", len(turn.AudioSegments)).
		Bool("pronunciation", turn.Pronunciation != nil).
		Msg("turn submitted")
	return turn, nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func (b *Backend) statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))

	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		msg = envelope.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return errors.New(errors.ErrTransport, fmt.Sprintf("%s returned status %d: %s", op, resp.StatusCode, msg))
}
