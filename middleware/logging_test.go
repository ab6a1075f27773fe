package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomairborne/tunnelbana/middleware"
)

func captureLogs(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func decodeLog(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLoggingRecordsRequest(t *testing.T) {
	t.Parallel()

	log, buf := captureLogs(t)

	h := middleware.Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/teapot?x=1", nil)
	req.RemoteAddr = "203.0.113.7:4711"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	entry := decodeLog(t, buf)
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/teapot", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status_code"])
	assert.Equal(t, float64(len("short and stout")), entry["bytes_out"])
	assert.Equal(t, "203.0.113.7", entry["client_ip"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestLoggingDefaultsStatusTo200(t *testing.T) {
	t.Parallel()

	log, buf := captureLogs(t)

	h := middleware.Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("implicit ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	entry := decodeLog(t, buf)
	assert.Equal(t, float64(http.StatusOK), entry["status_code"])
}

func TestLoggingIncludesRequestID(t *testing.T) {
	t.Parallel()

	log, buf := captureLogs(t)

	h := middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return "req-123" },
	})(middleware.Logging(log)(http.NotFoundHandler()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	entry := decodeLog(t, buf)
	assert.Equal(t, "req-123", entry["request_id"])
}

func TestLoggingSlowRequestWarns(t *testing.T) {
	t.Parallel()

	log, buf := captureLogs(t)

	h := middleware.LoggingWithConfig(middleware.LoggingConfig{
		Logger:               log,
		SlowRequestThreshold: time.Nanosecond,
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	entry := decodeLog(t, buf)
	assert.Equal(t, "WARN", entry["level"])
}

func TestLoggingSkip(t *testing.T) {
	t.Parallel()

	log, buf := captureLogs(t)

	h := middleware.LoggingWithConfig(middleware.LoggingConfig{
		Logger: log,
		Skip:   func(r *http.Request) bool { return r.URL.Path == "/health" },
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Zero(t, buf.Len())
}

func TestLoggingComponent(t *testing.T) {
	t.Parallel()

	log, buf := captureLogs(t)

	h := middleware.LoggingWithConfig(middleware.LoggingConfig{
		Logger:    log,
		Component: "edge",
	})(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	entry := decodeLog(t, buf)
	assert.Equal(t, "edge", entry["component"])
}
