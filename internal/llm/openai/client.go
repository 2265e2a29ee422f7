package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"career-backend/internal/llm"
	"career-backend/internal/shared/telemetry"
)

const (
	// DefaultBaseURL is the OpenAI-compatible AI gateway the service was built against.
	DefaultBaseURL = "https://ai.gateway.lovable.dev/v1"
	// DefaultModel is used when no model is configured.
	DefaultModel = "google/gemini-2.5-flash"

	completionsPath = "/chat/completions"

	// MaxResponseBytes bounds how much of a gateway response body is read.
	MaxResponseBytes = 4 << 20
)

var (
	// ErrMissingAPIKey is returned by NewClient when no credential is supplied.
	ErrMissingAPIKey = errors.New("LLM_API_KEY is not configured")
	// ErrResponseTooLarge is returned when the body exceeds MaxResponseBytes.
	ErrResponseTooLarge = errors.New("llm response exceeds size limit")
)

// Client implements llm.Completer against an OpenAI-compatible Chat Completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the gateway base URL.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(raw), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient constructs a chat completions client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// Complete issues exactly one chat completion request.
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = DefaultModel
	}
	reqMessages := make([]chatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		reqMessages = append(reqMessages, chatMessage{Role: m.Role, Content: m.Content})
	}
	payload, err := json.Marshal(chatRequest{Model: model, Messages: reqMessages})
	if err != nil {
		return llm.Completion{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return llm.Completion{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return llm.Completion{}, fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return llm.Completion{}, fmt.Errorf("llm read body: %w", err)
	}
	if len(body) > MaxResponseBytes {
		return llm.Completion{}, ErrResponseTooLarge
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return llm.Completion{}, &llm.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return llm.Completion{}, fmt.Errorf("llm response parse: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == nil {
		return llm.Completion{}, llm.ErrEmptyContent
	}
	content := *parsed.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return llm.Completion{}, llm.ErrEmptyContent
	}

	out := llm.Completion{Content: content, Model: parsed.Model}
	if out.Model == "" {
		out.Model = model
	}
	if parsed.Usage != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		}
	}
	logUsage(out.Model, out.Usage)
	return out, nil
}

func logUsage(model string, usage *llm.Usage) {
	fields := map[string]any{"provider": "openai", "model": model}
	if usage != nil {
		fields["prompt_tokens"] = usage.PromptTokens
		fields["completion_tokens"] = usage.CompletionTokens
		fields["total_tokens"] = usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

var _ llm.Completer = (*Client)(nil)
