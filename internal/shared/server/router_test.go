package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"career-backend/internal/advisor"
	"career-backend/internal/careers"
	"career-backend/internal/llm"
	"career-backend/internal/services/health"
	"career-backend/internal/shared/config"
)

type staticCompleter struct{ content string }

func (s staticCompleter) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	return llm.Completion{Content: s.content}, nil
}

func newTestRouter(t *testing.T, burst int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	doc := `{"usefulStacks":[],"avoidStacks":[],"roadmap":[],"summary":"ok"}`
	pipeline := advisor.NewPipeline(&advisor.Gateway{Completer: staticCompleter{content: doc}})
	return NewRouter(RouterDeps{
		Config: config.Config{
			Env:              "test",
			CORSAllowOrigins: []string{"*"},
			RateLimitRPS:     1,
			RateLimitBurst:   burst,
		},
		CareersHandler: careers.NewHandler(pipeline, nil),
		Health:         health.NewService(nil, "openai", "m"),
	})
}

func TestRouterServesAnalyzeAndHealth(t *testing.T) {
	r := newTestRouter(t, 10)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze-career", strings.NewReader(`{"skills":"Go","targetRole":"SRE"}`))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id header")
	}
	if resp.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected permissive CORS header")
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected health response %d %s", resp.Code, resp.Body.String())
	}
}

func TestRouterPreflightOnUnregisteredMethod(t *testing.T) {
	r := newTestRouter(t, 10)

	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/analyze-career", nil)
	req.Header.Set("Origin", "https://lovable.app")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", resp.Body.String())
	}
}

func TestRouterRateLimitsAnalyzeOnly(t *testing.T) {
	r := newTestRouter(t, 1)
	body := `{"skills":"Go","targetRole":"SRE"}`

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/v1/analyze-career", strings.NewReader(body)))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/v1/analyze-career", strings.NewReader(body)))
	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 200 then 429, got %d then %d", first.Code, second.Code)
	}

	healthResp := httptest.NewRecorder()
	r.ServeHTTP(healthResp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if healthResp.Code != http.StatusOK {
		t.Fatalf("health should not be rate limited, got %d", healthResp.Code)
	}
}

func TestRouterMetricsAndNotFound(t *testing.T) {
	r := newTestRouter(t, 10)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if resp.Code != http.StatusNotFound || resp.Body.String() != `{"error":"Not found"}` {
		t.Fatalf("unexpected 404 response %d %s", resp.Code, resp.Body.String())
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
