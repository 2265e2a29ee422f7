package advisor

import (
	"context"
	"errors"
	"time"

	"career-backend/internal/shared/metrics"
	"career-backend/internal/shared/reqctx"
	"career-backend/internal/shared/telemetry"
	"career-backend/internal/shared/util"
)

// Pipeline turns a Profile into a validated Document with one backend call.
type Pipeline struct {
	gateway *Gateway
}

// NewPipeline wires a Pipeline around gw.
func NewPipeline(gw *Gateway) *Pipeline {
	return &Pipeline{gateway: gw}
}

// Analyze runs Build, Execute and Decode in order and stops at the first failure.
func (p *Pipeline) Analyze(ctx context.Context, profile Profile) (Document, error) {
	start := time.Now()
	requestID := reqctx.RequestID(ctx)

	prompts, err := Build(profile)
	if err != nil {
		return Document{}, p.fail(requestID, start, err)
	}
	normalized := profile.Normalize()
	telemetry.Info("advisor.analyze_start", map[string]any{
		"request_id":     requestID,
		"prompt_hash":    util.ShortHash(prompts.System),
		"targetRole":     normalized.TargetRole,
		"hasCurrentRole": normalized.CurrentRole != "",
		"hasExperience":  normalized.Experience != "",
	})

	var gw *Gateway
	if p != nil {
		gw = p.gateway
	}
	text, err := gw.Execute(ctx, prompts)
	if err != nil {
		return Document{}, p.fail(requestID, start, err)
	}

	doc, err := Decode(text)
	if err != nil {
		return Document{}, p.fail(requestID, start, err)
	}

	metrics.ObserveAnalysis("ok", time.Since(start))
	telemetry.Info("advisor.analyze_done", map[string]any{
		"request_id":   requestID,
		"usefulStacks": len(doc.UsefulStacks),
		"avoidStacks":  len(doc.AvoidStacks),
		"phases":       len(doc.Roadmap),
		"elapsedMs":    time.Since(start).Milliseconds(),
	})
	return doc, nil
}

func (p *Pipeline) fail(requestID string, start time.Time, err error) error {
	kind := KindOf(err)
	metrics.ObserveAnalysis(string(kind), time.Since(start))
	fields := map[string]any{
		"request_id": requestID,
		"kind":       string(kind),
		"elapsedMs":  time.Since(start).Milliseconds(),
		"error":      err,
	}
	var e *Error
	if errors.As(err, &e) && e.Path != "" {
		fields["path"] = e.Path
	}
	telemetry.Warn("advisor.analyze_failed", fields)
	return err
}
