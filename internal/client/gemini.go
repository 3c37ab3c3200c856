package client

import (
	"context"

	"google.golang.org/genai"
)

// GeminiClient wraps the Gemini API for lesson generation.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini client authenticated with an API key.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiClient{client: client, model: model}, nil
}

// WithModel sets the model to use.
func (c *GeminiClient) WithModel(model string) *GeminiClient {
	c.model = model
	return c
}

// Chat sends a single user message and returns the response.
func (c *GeminiClient) Chat(ctx context.Context, message string) (string, error) {
	return c.ChatWithSystem(ctx, "", message)
}

// ChatWithSystem sends a system instruction plus a user message and
// returns the response.
func (c *GeminiClient) ChatWithSystem(ctx context.Context, system, user string) (string, error) {
	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), cfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
