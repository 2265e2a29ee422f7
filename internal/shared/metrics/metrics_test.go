package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAnalysisIncrementsOutcome(t *testing.T) {
	before := testutil.ToFloat64(analysesTotal.WithLabelValues("success"))
	ObserveAnalysis("success", 1500*time.Millisecond)
	after := testutil.ToFloat64(analysesTotal.WithLabelValues("success"))
	if after-before != 1 {
		t.Fatalf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestHandlerRendersCollectors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ObserveBackendStatus(http.StatusTooManyRequests)
	ObserveAnalysis("rate_limited", time.Second)

	r := gin.New()
	r.GET("/metrics", Handler())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, name := range []string{"career_analyses_total", "career_backend_responses_total", "career_analysis_duration_seconds"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}
