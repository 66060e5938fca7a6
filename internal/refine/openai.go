package refine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to an OpenAI-compatible /chat/completions endpoint.
type OpenAIClient struct {
	client *openai.Client
	apiKey string
	model  string
}

func NewOpenAIClient(cfg Config) *OpenAIClient {
	cfg = cfg.withDefaults()
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string, maxTokens int) ([]string, error) {
	if c.apiKey == "" {
		return nil, errors.New("API key not configured")
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, apiError(err)
	}
	texts := make([]string, 0, len(resp.Choices))
	for _, ch := range resp.Choices {
		texts = append(texts, ch.Message.Content)
	}
	return texts, nil
}

// apiError flattens the client's error types into "API error (status N): msg".
func apiError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("API error (status %d): %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Err == nil {
			return fmt.Errorf("API error (status %d): %s", reqErr.HTTPStatusCode, http.StatusText(reqErr.HTTPStatusCode))
		}
		return fmt.Errorf("API error (status %d): %w", reqErr.HTTPStatusCode, reqErr.Err)
	}
	return fmt.Errorf("request failed: %w", err)
}
