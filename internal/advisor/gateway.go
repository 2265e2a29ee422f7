package advisor

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"career-backend/internal/llm"
	"career-backend/internal/shared/metrics"
	"career-backend/internal/shared/reqctx"
	"career-backend/internal/shared/telemetry"
)

// Gateway performs the single outbound completion call for an analysis.
type Gateway struct {
	Completer llm.Completer
	Model     string
	// Timeout bounds the whole call; zero leaves the caller's deadline in charge.
	Timeout time.Duration
}

// Execute sends the prompts to the backend once and returns the raw text of the
// first choice. It never retries.
func (g *Gateway) Execute(ctx context.Context, prompts Prompts) (string, error) {
	if g == nil || g.Completer == nil {
		return "", NewConfigurationError(errors.New("completion backend is not configured"))
	}
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := g.Completer.Complete(ctx, llm.SystemUser(g.Model, prompts.System, prompts.User))
	if err != nil {
		classified := classifyBackendError(ctx, err)
		telemetry.Error("advisor.backend_failed", map[string]any{
			"request_id": reqctx.RequestID(ctx),
			"kind":       string(classified.Kind),
			"status":     classified.StatusCode,
			"timeout":    classified.Timeout,
			"body":       truncate(classified.Body, 512),
			"elapsedMs":  time.Since(start).Milliseconds(),
			"error":      err,
		})
		return "", classified
	}
	metrics.ObserveBackendStatus(http.StatusOK)
	if strings.TrimSpace(completion.Content) == "" {
		return "", &Error{Kind: KindEmptyResponse, Message: msgEmptyResponse}
	}
	telemetry.Info("advisor.backend_ok", map[string]any{
		"request_id": reqctx.RequestID(ctx),
		"model":      completion.Model,
		"chars":      len(completion.Content),
		"elapsedMs":  time.Since(start).Milliseconds(),
	})
	return completion.Content, nil
}

func classifyBackendError(ctx context.Context, err error) *Error {
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		metrics.ObserveBackendStatus(statusErr.StatusCode)
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests:
			return &Error{Kind: KindRateLimited, Message: msgRateLimited, StatusCode: statusErr.StatusCode, Body: statusErr.Body, Err: err}
		case http.StatusPaymentRequired:
			return &Error{Kind: KindServiceUnavailable, Message: msgServiceUnavailable, StatusCode: statusErr.StatusCode, Body: statusErr.Body, Err: err}
		default:
			return &Error{Kind: KindBackend, Message: msgBackend, StatusCode: statusErr.StatusCode, Body: statusErr.Body, Err: err}
		}
	}
	if errors.Is(err, llm.ErrEmptyContent) {
		metrics.ObserveBackendStatus(http.StatusOK)
		return &Error{Kind: KindEmptyResponse, Message: msgEmptyResponse, Err: err}
	}
	if isTimeout(ctx, err) {
		return &Error{Kind: KindBackend, Message: msgTimeout, Timeout: true, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindBackend, Message: msgCanceled, Err: err}
	}
	return &Error{Kind: KindBackend, Message: msgBackend, Err: err}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
