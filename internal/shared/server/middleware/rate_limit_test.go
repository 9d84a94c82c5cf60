package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-tailor/internal/shared/server/respond"
)

func newLimitedRouter(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session())
	r.Use(RateLimit(RateLimitConfig{
		Limiter: limiter,
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost {
				return "GENERATE"
			}
			return ""
		},
		Rules: map[string]RateLimitRule{
			"GENERATE": {Rate: 1, Burst: 2},
			"DEFAULT":  {Rate: 5, Burst: 10},
		},
	}))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/sessions/:id", ok)
	r.POST("/sessions/:id/resume", ok)
	return r
}

func hit(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRateLimitGenerationBudgetIsPerSession(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := newLimitedRouter(NewRateLimiter(func() time.Time { return now }))

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, hit(r, http.MethodPost, "/sessions/a/resume").Code, "request %d", i+1)
	}
	resp := hit(r, http.MethodPost, "/sessions/a/resume")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "1", resp.Header().Get("Retry-After"))

	var body respond.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "rate_limited", body.Error.Code)
	details, ok := body.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "GENERATE", details["group"])
	assert.EqualValues(t, 1000, details["retryAfterMs"])

	// Other sessions and cheaper routes are unaffected.
	assert.Equal(t, http.StatusOK, hit(r, http.MethodPost, "/sessions/b/resume").Code)
	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet, "/sessions/a").Code)
}

func TestRateLimitRefills(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := newLimitedRouter(NewRateLimiter(func() time.Time { return now }))

	for i := 0; i < 2; i++ {
		hit(r, http.MethodPost, "/sessions/a/resume")
	}
	require.Equal(t, http.StatusTooManyRequests, hit(r, http.MethodPost, "/sessions/a/resume").Code)

	now = now.Add(1100 * time.Millisecond)
	assert.Equal(t, http.StatusOK, hit(r, http.MethodPost, "/sessions/a/resume").Code)
}

func TestRateLimiterDropsIdleBuckets(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 1}

	l.Allow("GENERATE|a", rule)
	l.Allow("GENERATE|b", rule)
	require.Equal(t, 2, l.Len())

	now = now.Add(limiterIdleTTL + time.Minute)
	l.Allow("GENERATE|c", rule)
	assert.Equal(t, 1, l.Len())
}

func TestRateLimiterDisabledRule(t *testing.T) {
	l := NewRateLimiter(nil)
	for i := 0; i < 100; i++ {
		ok, _ := l.Allow("k", RateLimitRule{})
		require.True(t, ok)
	}
}
