package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-tailor/internal/services/health"
	"resume-tailor/internal/sessions"
	"resume-tailor/internal/shared/config"
)

func newTestRouter(rps float64, burst int) http.Handler {
	svc := &sessions.Service{Repo: sessions.NewMemoryRepo()}
	return NewRouter(RouterDeps{
		Config:          config.Config{RateLimitRPS: rps, RateLimitBurst: burst},
		SessionsHandler: sessions.NewHandler(svc),
		Health:          health.NewService(0),
	})
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(0, 0)

	resp := serve(r, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"ok":true`)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/health").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/metrics").Code)
}

func TestHealthReportsUnavailable(t *testing.T) {
	hs := health.NewService(0)
	hs.Register("redis", func(ctx context.Context) error { return errors.New("down") })
	r := NewRouter(RouterDeps{Health: hs})

	resp := serve(r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), "down")
}

func TestSessionsMounted(t *testing.T) {
	r := newTestRouter(0, 0)
	resp := serve(r, http.MethodPost, "/api/v1/sessions")
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))
}

func TestDefaultGroupGetsLargerBudget(t *testing.T) {
	r := newTestRouter(0.001, 1)

	// DEFAULT allows ten requests before refusing.
	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/api/v1/sessions").Code, "request %d", i)
	}
	resp := serve(r, http.MethodPost, "/api/v1/sessions")
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))
}

func TestRateLimitConfigGroups(t *testing.T) {
	cfg := rateLimitConfig(config.Config{RateLimitRPS: 2, RateLimitBurst: 5})
	assert.Equal(t, 2.0, cfg.Rules[rateGroupGenerate].Rate)
	assert.Equal(t, 5, cfg.Rules[rateGroupGenerate].Burst)
	assert.Equal(t, 50, cfg.Rules[rateGroupDefault].Burst)
}

func TestAddr(t *testing.T) {
	assert.Equal(t, ":8080", Addr(""))
	assert.Equal(t, ":9000", Addr("9000"))
	assert.Equal(t, ":9000", Addr(":9000"))
}
