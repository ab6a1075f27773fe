package hidepaths_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomairborne/tunnelbana/core/hidepaths"
	"github.com/randomairborne/tunnelbana/core/router"
)

func TestGuardDivertsHiddenPaths(t *testing.T) {
	t.Parallel()

	guard, err := hidepaths.NewBuilder().
		Hide("/_redirects").
		HideAll("/_headers", "/.well-known/{*rest}").
		Build()
	require.NoError(t, err)

	served := false
	h := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served = true
		w.WriteHeader(http.StatusOK)
	}))

	hiddenPaths := []string{"/_redirects", "/_headers", "/.well-known/security.txt", "/.well-known/a/b"}
	for _, path := range hiddenPaths {
		served = false
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusNotFound, rec.Code, "path %q", path)
		assert.Empty(t, rec.Body.String())
		assert.False(t, served, "hidden path %q must never reach the file handler", path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, served)
}

func TestGuardCustomFallback(t *testing.T) {
	t.Parallel()

	fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})

	guard, err := hidepaths.NewBuilder().Hide("/secret").Build(hidepaths.WithNotFound(fallback))
	require.NoError(t, err)

	h := guard.Middleware(http.NotFoundHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/secret", nil))

	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestBuilderCollectsAllErrors(t *testing.T) {
	t.Parallel()

	b := hidepaths.NewBuilder().
		Hide("/ok").
		Hide("no-slash").
		Hide("/ok").
		Hide("/{*w}/middle")

	require.Len(t, b.Errors(), 3)

	_, err := b.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, router.ErrInvalidPattern)
	assert.ErrorIs(t, err, router.ErrDuplicateRoute)
	assert.ErrorIs(t, err, router.ErrWildcardPosition)
}
