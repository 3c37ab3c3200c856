package client

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OllamaClient talks to a local Ollama instance through its
// OpenAI-compatible endpoint.
type OllamaClient struct {
	client *openai.Client
	model  string
}

// NewOllamaClient creates a client for the Ollama server at baseURL,
// e.g. http://localhost:11434/v1.
func NewOllamaClient(baseURL, model string) *OllamaClient {
	cfg := openai.DefaultConfig("ollama") // key is ignored by Ollama but must be non-empty
	cfg.BaseURL = baseURL
	return &OllamaClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// WithModel sets the model to use.
func (c *OllamaClient) WithModel(model string) *OllamaClient {
	c.model = model
	return c
}

// Chat sends a single user message and returns the response.
func (c *OllamaClient) Chat(ctx context.Context, message string) (string, error) {
	return c.ChatWithSystem(ctx, "", message)
}

// ChatWithSystem sends a system prompt plus a user message and returns
// the response.
func (c *OllamaClient) ChatWithSystem(ctx context.Context, system, user string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
