package client

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"github.com/nvoisard/bilingo/internal/errors"
	"github.com/nvoisard/bilingo/internal/lang"
)

// googleVoices maps supported languages to Cloud TTS voice names.
var googleVoices = map[lang.Code]string{
	lang.French:  "fr-FR-Neural2-A",
	lang.Russian: "ru-RU-Wavenet-C",
}

// GoogleTTSClient wraps Cloud Text-to-Speech as an alternative
// synthesis backend. Credentials come from the ambient service account
// (GOOGLE_APPLICATION_CREDENTIALS).
type GoogleTTSClient struct {
	client *texttospeech.Client
}

// NewGoogleTTSClient creates a Cloud TTS client.
func NewGoogleTTSClient(ctx context.Context) (*GoogleTTSClient, error) {
	c, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create texttospeech client: %w", err)
	}
	return &GoogleTTSClient{client: c}, nil
}

// Close releases the underlying connection.
func (c *GoogleTTSClient) Close() error {
	return c.client.Close()
}

// Synthesize renders text in the voice registered for the language and
// returns MP3 bytes.
func (c *GoogleTTSClient) Synthesize(ctx context.Context, text string, language lang.Code) ([]byte, error) {
	voice, ok := googleVoices[language]
	if !ok {
		return nil, errors.New(errors.ErrTTSService, "no voice registered for language: "+string(language))
	}

	resp, err := c.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: lang.Locale(language),
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}
	return resp.AudioContent, nil
}
