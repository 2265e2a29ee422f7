package advisor

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the pipeline can surface.
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindConfiguration      Kind = "configuration_error"
	KindRateLimited        Kind = "rate_limited"
	KindServiceUnavailable Kind = "service_unavailable"
	KindBackend            Kind = "backend_error"
	KindEmptyResponse      Kind = "empty_response"
	KindMalformedResponse  Kind = "malformed_response"
	KindSchemaViolation    Kind = "schema_violation"
)

const (
	msgRateLimited        = "Rate limit exceeded. Please try again in a moment."
	msgServiceUnavailable = "Service temporarily unavailable. Please try again later."
	msgBackend            = "Failed to get AI response"
	msgTimeout            = "AI request timed out"
	msgCanceled           = "AI request was cancelled"
	msgEmptyResponse      = "No content in AI response"
	msgMalformedResponse  = "Could not parse AI response"
)

// Error is the typed failure returned by Build, Execute and Analyze.
// Message is safe to show to end users; the remaining fields are diagnostics.
type Error struct {
	Kind    Kind
	Message string

	// Path names the first offending field for KindSchemaViolation.
	Path string
	// StatusCode and Body carry the raw backend answer for backend failures.
	StatusCode int
	Body       string
	// Timeout is set when the outbound call was aborted by the request timeout.
	Timeout bool

	Err error
}

// Sentinels for errors.Is comparisons by kind.
var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "invalid profile"}
	ErrConfiguration      = &Error{Kind: KindConfiguration, Message: "configuration error"}
	ErrRateLimited        = &Error{Kind: KindRateLimited, Message: msgRateLimited}
	ErrServiceUnavailable = &Error{Kind: KindServiceUnavailable, Message: msgServiceUnavailable}
	ErrBackend            = &Error{Kind: KindBackend, Message: msgBackend}
	ErrEmptyResponse      = &Error{Kind: KindEmptyResponse, Message: msgEmptyResponse}
	ErrMalformedResponse  = &Error{Kind: KindMalformedResponse, Message: msgMalformedResponse}
	ErrSchemaViolation    = &Error{Kind: KindSchemaViolation, Message: "schema violation"}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil && e.Err.Error() != msg {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// NewConfigurationError wraps a fatal setup problem such as a missing backend credential.
func NewConfigurationError(err error) *Error {
	msg := "configuration error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: KindConfiguration, Message: msg, Err: err}
}

func newSchemaViolation(path, detail string) *Error {
	return &Error{
		Kind:    KindSchemaViolation,
		Message: fmt.Sprintf("AI response failed validation at %s: %s", path, detail),
		Path:    path,
	}
}
