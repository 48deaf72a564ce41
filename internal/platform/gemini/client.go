package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yungbote/feedback-backend/internal/platform/logger"
)

const DefaultModel = "gemini-2.0-flash"

var ErrMissingAPIKey = errors.New("gemini: api key not configured")

// Client generates JSON completions through the Gemini API.
type Client struct {
	log    *logger.Logger
	client *genai.Client
	model  string
}

func New(ctx context.Context, log *logger.Logger, apiKey, model string) (*Client, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{
		log:    log.With("service", "GeminiClient", "model", model),
		client: c,
		model:  model,
	}, nil
}

func (c *Client) Model() string { return c.model }

// CompleteJSON asks for an application/json response to a single user prompt.
func (c *Client) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("empty prompt")
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini: empty completion")
	}
	return text, nil
}
