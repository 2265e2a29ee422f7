package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"career-backend/internal/llm"
	"career-backend/internal/shared/telemetry"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey is returned by NewClient when no credential is supplied.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not configured")

// Client implements llm.Completer on top of the Gemini API.
type Client struct {
	models *genai.Models
}

// Config controls how the underlying genai client is built.
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a Gemini completer.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	cc := &genai.ClientConfig{
		APIKey:     strings.TrimSpace(cfg.APIKey),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{models: client.Models}, nil
}

// Complete sends the system message as SystemInstruction and the user message as content.
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = DefaultModel
	}

	var system []string
	var contents []*genai.Content
	for _, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem:
			system = append(system, m.Content)
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	config := &genai.GenerateContentConfig{}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	resp, err := c.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return llm.Completion{}, mapError(err)
	}
	if resp == nil {
		return llm.Completion{}, llm.ErrEmptyContent
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return llm.Completion{}, llm.ErrEmptyContent
	}

	out := llm.Completion{Content: text, Model: model}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	fields := map[string]any{"provider": "gemini", "model": out.Model}
	if out.Usage != nil {
		fields["prompt_tokens"] = out.Usage.PromptTokens
		fields["completion_tokens"] = out.Usage.CompletionTokens
		fields["total_tokens"] = out.Usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
	return out, nil
}

// mapError turns genai API errors into llm.StatusError so callers classify them uniformly.
func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return statusError(*apiErrPtr)
	}
	return fmt.Errorf("gemini generate content: %w", err)
}

func statusError(apiErr genai.APIError) error {
	body := apiErr.Message
	if apiErr.Status != "" {
		body = fmt.Sprintf("%s (%s)", apiErr.Message, apiErr.Status)
	}
	return &llm.StatusError{StatusCode: apiErr.Code, Body: body}
}

var _ llm.Completer = (*Client)(nil)
