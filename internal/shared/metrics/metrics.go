package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	analysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_analyses_total",
			Help: "Total career analyses by outcome",
		},
		[]string{"outcome"},
	)

	analysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "career_analysis_duration_seconds",
			Help:    "Duration of career analyses including the backend round trip",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
	)

	backendResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_backend_responses_total",
			Help: "Completion backend responses by HTTP status",
		},
		[]string{"status"},
	)
)

// ObserveAnalysis records one finished analysis with its outcome label.
func ObserveAnalysis(outcome string, elapsed time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	analysesTotal.WithLabelValues(outcome).Inc()
	if elapsed < 0 {
		elapsed = 0
	}
	analysisDuration.Observe(elapsed.Seconds())
}

// ObserveBackendStatus counts a completion backend response by status code.
func ObserveBackendStatus(status int) {
	backendResponses.WithLabelValues(strconv.Itoa(status)).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
