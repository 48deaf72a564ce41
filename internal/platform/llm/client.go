package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/feedback-backend/internal/platform/logger"
)

const (
	DefaultGroqBaseURL   = "https://api.groq.com/openai"
	DefaultOpenAIBaseURL = "https://api.openai.com"
	DefaultGroqModel     = "llama-3.1-8b-instant"
	DefaultOpenAIModel   = "gpt-4o-mini"
	defaultChatPath      = "/v1/chat/completions"
)

type Config struct {
	BaseURL  string
	APIKey   string
	Model    string
	ChatPath string
	// Timeout of zero leaves the call bounded only by the caller's context.
	Timeout time.Duration
}

// Client speaks the OpenAI chat completions protocol, which Groq and
// OpenAI both serve. Calls are single-shot.
type Client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	chatPath   string
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGroqModel
	}
	chatPath := strings.TrimSpace(cfg.ChatPath)
	if chatPath == "" {
		chatPath = defaultChatPath
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConnsPerHost = 4

	return &Client{
		log:        log.With("service", "LLMClient", "model", model),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		chatPath:   chatPath,
		httpClient: &http.Client{Transport: tr, Timeout: cfg.Timeout},
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(log *logger.Logger, cfg Config, httpClient *http.Client) (*Client, error) {
	c, err := New(log, cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c, nil
}

func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content,omitempty"`
		} `json:"message,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"choices"`
}

// CompleteJSON sends prompt as a single user message in JSON mode and
// returns the raw JSON text of the first choice.
func (c *Client) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("empty prompt")
	}
	req := chatCompletionRequest{
		Model:          c.model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		ResponseFormat: map[string]any{"type": "json_object"},
	}

	start := time.Now()
	var resp chatCompletionResponse
	if err := c.postChat(ctx, req, &resp); err != nil {
		return "", err
	}
	c.log.Debug("chat completion finished", "duration_ms", time.Since(start).Milliseconds())

	text := extractChatText(resp)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return sanitizeJSONText(text), nil
}

func extractChatText(resp chatCompletionResponse) string {
	for _, ch := range resp.Choices {
		if strings.TrimSpace(ch.Message.Content) != "" {
			return ch.Message.Content
		}
		if strings.TrimSpace(ch.Text) != "" {
			return ch.Text
		}
	}
	return ""
}

// Some models wrap JSON mode output in a markdown fence anyway.
func sanitizeJSONText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	firstNL := strings.IndexByte(s, '\n')
	if firstNL == -1 {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	s = s[firstNL+1:]
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// postChat sends one chat completion request and decodes the reply into out.
func (c *Client) postChat(ctx context.Context, payload chatCompletionRequest, out *chatCompletionResponse) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.chatPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("llm transport: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("llm decode: %w", err)
	}
	return nil
}
