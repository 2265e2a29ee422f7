package careers

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"career-backend/internal/advisor"
	"career-backend/internal/shared/server/respond"
	"career-backend/internal/shared/telemetry"
	"career-backend/internal/usage"
)

const (
	maxBodyBytes = 64 << 10

	msgDailyLimit = "Daily analysis limit reached. Please try again tomorrow."
	msgInternal   = "Internal server error"
)

// Analyzer runs one career analysis.
type Analyzer interface {
	Analyze(ctx context.Context, profile advisor.Profile) (advisor.Document, error)
}

// Handler exposes the career analysis endpoint.
type Handler struct {
	Analyzer Analyzer
	Usage    *usage.Service
}

// NewHandler constructs a Handler. A nil usage service disables the daily quota.
func NewHandler(analyzer Analyzer, usageSvc *usage.Service) *Handler {
	return &Handler{Analyzer: analyzer, Usage: usageSvc}
}

// RegisterRoutes attaches the analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze-career", h.analyze)
	rg.GET("/usage", h.getUsage)
}

// RegisterLegacyRoutes attaches the edge-function style path used by existing clients.
func (h *Handler) RegisterLegacyRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze-career", h.analyze)
}

func (h *Handler) analyze(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, http.StatusRequestEntityTooLarge, "Request body too large", advisor.KindValidation, nil)
			return
		}
		h.fail(c, http.StatusBadRequest, errInvalidJSON.Error(), advisor.KindValidation, nil)
		return
	}

	profile, err := decodeProfile(body)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err.Error(), advisor.KindValidation, nil)
		return
	}
	if err := profile.Validate(); err != nil {
		h.failWith(c, err)
		return
	}

	if h.Usage.Enabled() {
		u, err := h.Usage.Consume(c.Request.Context(), c.ClientIP())
		switch {
		case errors.Is(err, usage.ErrLimitReached):
			c.Header("Retry-After", retryAfterSeconds(u.ResetsAt))
			h.fail(c, http.StatusTooManyRequests, msgDailyLimit, "quota_exceeded", map[string]any{"used": u.Used, "limit": u.Limit})
			return
		case err != nil:
			telemetry.Warn("usage.consume_failed", map[string]any{
				"request_id": c.GetString("requestId"),
				"error":      err,
			})
		}
	}

	doc, err := h.Analyzer.Analyze(c.Request.Context(), profile)
	if err != nil {
		h.failWith(c, err)
		return
	}

	c.Set("outcome", "ok")
	respond.JSON(c, http.StatusOK, doc)
}

func (h *Handler) getUsage(c *gin.Context) {
	u, err := h.Usage.Get(c.Request.Context(), c.ClientIP())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to fetch usage")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"enabled":   h.Usage.Enabled(),
		"limit":     u.Limit,
		"used":      u.Used,
		"remaining": u.Remaining(),
		"resetsAt":  u.ResetsAt,
	})
}

func (h *Handler) failWith(c *gin.Context, err error) {
	var e *advisor.Error
	if !errors.As(err, &e) {
		h.fail(c, http.StatusInternalServerError, msgInternal, "", map[string]any{"error": err})
		return
	}
	extra := map[string]any{"error": err}
	if e.Path != "" {
		extra["field"] = e.Path
	}
	if e.StatusCode != 0 {
		extra["backend_status"] = e.StatusCode
	}
	if e.Timeout {
		extra["timeout"] = true
	}
	h.fail(c, StatusFor(e.Kind), e.Message, e.Kind, extra)
}

func (h *Handler) fail(c *gin.Context, status int, message string, kind advisor.Kind, extra map[string]any) {
	if extra == nil {
		extra = map[string]any{}
	}
	if kind != "" {
		extra["kind"] = string(kind)
		c.Set("outcome", string(kind))
	}
	respond.ErrorWithFields(c, status, message, extra)
}

// StatusFor maps a failure kind to its HTTP status.
func StatusFor(kind advisor.Kind) int {
	switch kind {
	case advisor.KindValidation:
		return http.StatusBadRequest
	case advisor.KindRateLimited:
		return http.StatusTooManyRequests
	case advisor.KindServiceUnavailable:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func retryAfterSeconds(resetsAt time.Time) string {
	secs := int(math.Ceil(time.Until(resetsAt).Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
