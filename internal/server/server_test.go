package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage/internal/config"
	"github.com/docsage/docsage/internal/core/ratelimit"
)

func newTestServer(limiter *ratelimit.Limiter) *Server {
	return New(config.ServerConfig{Host: "localhost", Port: 0}, limiter, nil, "test")
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(ratelimit.New(15, time.Minute))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "test", body["version"])
}

func TestRateLimitEndpoint(t *testing.T) {
	limiter := ratelimit.New(15, time.Minute)
	limiter.RecordRequest()
	limiter.RecordRequest()
	srv := newTestServer(limiter)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ratelimit", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, float64(15), body["max_requests"])
	require.Equal(t, float64(60), body["time_window_seconds"])
	require.Equal(t, float64(2), body["current_requests"])
	require.Equal(t, float64(13), body["remaining_requests"])
	require.Equal(t, true, body["can_make_request"])
	require.NotNil(t, body["reset_seconds"])
}

func TestRateLimitEndpointUnconfigured(t *testing.T) {
	srv := newTestServer(nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ratelimit", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSearchEndpointUnconfigured(t *testing.T) {
	srv := newTestServer(ratelimit.New(15, time.Minute))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/search?q=anything", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnknownRouteReturnsJSONError(t *testing.T) {
	srv := newTestServer(nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["error"])
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
