package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/slackdone/internal/server/middleware"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { //nolint:gochecknoglobals // shared test handler
	w.WriteHeader(http.StatusOK)
})

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.RemoteAddr = addr
	return req
}

// ===========================================================================
// 1. ClientIP
// ===========================================================================

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		addr string
		want string
	}{
		{name: "ipv4 with port", addr: "10.0.0.1:5555", want: "10.0.0.1"},
		{name: "ipv6 with port", addr: "[::1]:5555", want: "::1"},
		{name: "bare address from RealIP", addr: "203.0.113.9", want: "203.0.113.9"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, middleware.ClientIP(requestFrom(tc.addr)))
		})
	}
}

// ===========================================================================
// 2. RateLimit middleware
// ===========================================================================

func TestRateLimit_EmptyKey_PassesThrough(t *testing.T) {
	t.Parallel()

	noKey := func(*http.Request) string { return "" }
	handler := middleware.RateLimit(t.Context(), 0.001, 1, noKey)(okHandler)

	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("10.0.0.1:1"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_BurstExceeded_Returns429(t *testing.T) {
	t.Parallel()

	// Very low rate (effectively zero refill during the test) with burst of 2.
	handler := middleware.RateLimit(t.Context(), 0.001, 2, middleware.ClientIP)(okHandler)

	for i := range 2 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("10.0.0.1:1"))
		require.Equalf(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("10.0.0.1:2"))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestRateLimit_IndependentPerKey(t *testing.T) {
	t.Parallel()

	handler := middleware.RateLimit(t.Context(), 0.001, 1, middleware.ClientIP)(okHandler)

	recA := httptest.NewRecorder()
	handler.ServeHTTP(recA, requestFrom("10.0.0.1:1"))
	require.Equal(t, http.StatusOK, recA.Code)

	recA2 := httptest.NewRecorder()
	handler.ServeHTTP(recA2, requestFrom("10.0.0.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, recA2.Code)

	recB := httptest.NewRecorder()
	handler.ServeHTTP(recB, requestFrom("10.0.0.2:1"))
	assert.Equal(t, http.StatusOK, recB.Code)
}

// ===========================================================================
// 3. Logging middleware
// ===========================================================================

func TestLogging_WritesAccessLineWithRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var handlerLogged bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		handlerLogged = true
		w.WriteHeader(http.StatusTeapot)
	})
	handler := chimw.RequestID(middleware.Logging(logger)(inner))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/workspaces?x=1", http.NoBody))

	require.True(t, handlerLogged)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	reqID := rec.Header().Get(chimw.RequestIDHeader)
	require.NotEmpty(t, reqID)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inside, access map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inside))
	require.NoError(t, json.Unmarshal(lines[1], &access))

	assert.Equal(t, "inside", inside["message"])
	assert.Equal(t, reqID, inside["req_id"])

	assert.Equal(t, "http request", access["message"])
	assert.Equal(t, "info", access["level"])
	assert.Equal(t, reqID, access["req_id"])
	assert.Equal(t, http.MethodGet, access["method"])
	assert.Equal(t, "/api/v1/workspaces?x=1", access["url"])
	assert.InDelta(t, float64(http.StatusTeapot), access["status"], 0)
}

func TestLogging_ServerErrorLoggedAtErrorLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	handler := middleware.Logging(zerolog.New(&buf))(inner)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	var access map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &access))
	assert.Equal(t, "error", access["level"])
	assert.NotContains(t, access, "req_id", "no request id without chimw.RequestID")
}
