package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomairborne/tunnelbana/middleware"
)

func TestRequestIDGeneratesUUID(t *testing.T) {
	t.Parallel()

	var seen string
	h := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.GetRequestID(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDUseExisting(t *testing.T) {
	t.Parallel()

	h := middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		UseExisting: true,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.GetRequestID(r.Context())
		assert.Equal(t, "upstream-id", id)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-id", rec.Header().Get("X-Request-ID"))
}

func TestRequestIDIgnoresIncomingByDefault(t *testing.T) {
	t.Parallel()

	h := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "spoofed")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEqual(t, "spoofed", rec.Header().Get("X-Request-ID"))
}

func TestRequestIDCustomConfig(t *testing.T) {
	t.Parallel()

	h := middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		HeaderName: "X-Trace",
		Generator:  func() string { return "fixed" },
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "fixed", rec.Header().Get("X-Trace"))
}

func TestRequestIDSkip(t *testing.T) {
	t.Parallel()

	h := middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Skip: func(r *http.Request) bool { return r.URL.Path == "/health" },
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := middleware.GetRequestID(r.Context())
		assert.False(t, ok)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Empty(t, rec.Header().Get("X-Request-ID"))
}
