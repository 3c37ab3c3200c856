package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/nvoisard/bilingo/internal/errors"
)

// WhisperClient wraps the local WhisperX speech server: plain
// transcription plus the aligned pronunciation-analysis pipeline.
type WhisperClient struct {
	baseURL string
	client  *http.Client
}

// TranscriptionResult is the /transcribe response.
type TranscriptionResult struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// PronunciationResult is the /analyze_pronunciation response with
// word-level alignment scores and prosody metrics.
type PronunciationResult struct {
	Transcription      string              `json:"transcription"`
	Language           string              `json:"language"`
	PronunciationScore float64             `json:"pronunciation_score"`
	Words              []PronunciationWord `json:"words"`
	Prosody            *ProsodyMetrics     `json:"prosody"`
}

// PronunciationWord is one aligned word with its timing and score.
type PronunciationWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score float64 `json:"score"`
}

// ProsodyMetrics carries pitch and pacing measurements.
type ProsodyMetrics struct {
	AveragePitchHz float64 `json:"average_pitch_hz"`
	SpeechRateWPS  float64 `json:"speech_rate_wps"`
	DurationS      float64 `json:"duration_s"`
}

// NewWhisperClient creates a client for the speech server at baseURL.
func NewWhisperClient(baseURL string, timeout time.Duration) *WhisperClient {
	if timeout == 0 {
		timeout = 120 * time.Second // model inference can be slow on CPU
	}
	return &WhisperClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Transcribe sends raw audio for speech recognition. language hints the
// expected language; the server may still auto-detect.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte, language string) (*TranscriptionResult, error) {
	if c.baseURL == "" {
		return nil, errors.New(errors.ErrSTTService, "whisper server not configured")
	}

	body, contentType, err := audioForm(audio, map[string]string{"language": language})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("whisper server error %d: %s", resp.StatusCode, string(respBody))
	}

	var result TranscriptionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// AnalyzePronunciation scores the audio against a reference text using
// the server's alignment pipeline.
func (c *WhisperClient) AnalyzePronunciation(ctx context.Context, audio []byte, referenceText, language string) (*PronunciationResult, error) {
	if c.baseURL == "" {
		return nil, errors.New(errors.ErrSTTService, "whisper server not configured")
	}

	body, contentType, err := audioForm(audio, map[string]string{
		"text":     referenceText,
		"language": language,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze_pronunciation", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("pronunciation analysis error %d: %s", resp.StatusCode, string(respBody))
	}

	var result PronunciationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// audioForm builds a multipart body with the audio under field "audio"
// plus the given extra fields.
func audioForm(audio []byte, fields map[string]string) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("audio", "utterance.wav")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", fmt.Errorf("failed to write audio data: %w", err)
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}
