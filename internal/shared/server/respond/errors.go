package respond

import (
	"github.com/gin-gonic/gin"

	"career-backend/internal/shared/telemetry"
)

// ErrorResponse is the body of every failed response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error logs the failure and aborts with {"error": message}.
func Error(c *gin.Context, status int, message string) {
	ErrorWithFields(c, status, message, nil)
}

// ErrorWithFields is Error with extra diagnostic fields on the log line only.
func ErrorWithFields(c *gin.Context, status int, message string, extra map[string]any) {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	for k, v := range extra {
		fields[k] = v
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}
