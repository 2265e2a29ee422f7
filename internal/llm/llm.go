package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Roles understood by chat-style completion backends.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Completer abstracts text-completion providers.
type Completer interface {
	Complete(ctx context.Context, req Request) (Completion, error)
}

// Message is a single chat message sent to the backend.
type Message struct {
	Role    string
	Content string
}

// Request captures one completion call.
type Request struct {
	Model    string
	Messages []Message
}

// Completion is the text returned by the backend for the first choice.
type Completion struct {
	Content string
	Model   string
	Usage   *Usage
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ErrEmptyContent is returned when the backend answered successfully without any content.
var ErrEmptyContent = errors.New("llm response empty content")

// StatusError is returned for every non-2xx answer from the backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("llm http status %d", e.StatusCode)
	}
	return fmt.Sprintf("llm http status %d: %s", e.StatusCode, body)
}

// SystemUser builds the two-message exchange used by every analysis call.
func SystemUser(model, system, user string) Request {
	return Request{
		Model: model,
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: user},
		},
	}
}
