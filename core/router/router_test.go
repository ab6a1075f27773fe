package router_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomairborne/tunnelbana/core/router"
)

func TestInsertValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		wantErr error
	}{
		{name: "plain_path", pattern: "/about"},
		{name: "root", pattern: "/"},
		{name: "named_capture", pattern: "/articles/{slug}"},
		{name: "wildcard", pattern: "/files/{*path}"},
		{name: "capture_then_literal", pattern: "/u/{id}/profile"},
		{name: "missing_leading_slash", pattern: "about", wantErr: router.ErrInvalidPattern},
		{name: "empty_pattern", pattern: "", wantErr: router.ErrInvalidPattern},
		{name: "wildcard_not_last", pattern: "/files/{*path}/x", wantErr: router.ErrWildcardPosition},
		{name: "empty_capture_name", pattern: "/x/{}", wantErr: router.ErrEmptyCaptureName},
		{name: "empty_wildcard_name", pattern: "/x/{*}", wantErr: router.ErrEmptyCaptureName},
		{name: "duplicate_capture_name", pattern: "/{a}/{a}", wantErr: router.ErrDuplicateParam},
		{name: "stray_brace", pattern: "/x/{bad", wantErr: router.ErrMalformedSegment},
		{name: "star_in_literal", pattern: "/x/a*b", wantErr: router.ErrMalformedSegment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := router.New[int]()
			err := r.Insert(tt.pattern, 1)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, r.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, r.Len())
		})
	}
}

func TestInsertConflicts(t *testing.T) {
	t.Parallel()

	t.Run("duplicate_route", func(t *testing.T) {
		t.Parallel()

		r := router.New[int]()
		require.NoError(t, r.Insert("/a/b", 1))
		require.ErrorIs(t, r.Insert("/a/b", 2), router.ErrDuplicateRoute)
	})

	t.Run("capture_name_conflict", func(t *testing.T) {
		t.Parallel()

		r := router.New[int]()
		require.NoError(t, r.Insert("/a/{x}", 1))
		require.ErrorIs(t, r.Insert("/a/{y}", 2), router.ErrCaptureConflict)
	})

	t.Run("same_capture_different_suffix_ok", func(t *testing.T) {
		t.Parallel()

		r := router.New[int]()
		require.NoError(t, r.Insert("/a/{x}", 1))
		require.NoError(t, r.Insert("/a/{x}/b", 2))
	})

	t.Run("duplicate_wildcard", func(t *testing.T) {
		t.Parallel()

		r := router.New[int]()
		require.NoError(t, r.Insert("/a/{*rest}", 1))
		require.ErrorIs(t, r.Insert("/a/{*rest}", 2), router.ErrDuplicateRoute)
	})

	t.Run("wildcard_name_conflict", func(t *testing.T) {
		t.Parallel()

		r := router.New[int]()
		require.NoError(t, r.Insert("/a/{*rest}", 1))
		require.ErrorIs(t, r.Insert("/a/{*other}", 2), router.ErrCaptureConflict)
	})
}

func TestMatchPrecedence(t *testing.T) {
	t.Parallel()

	r := router.New[string]()
	require.NoError(t, r.Insert("/a/b", "literal"))
	require.NoError(t, r.Insert("/a/{x}", "capture"))
	require.NoError(t, r.Insert("/a/{*rest}", "wildcard"))

	tests := []struct {
		path       string
		want       string
		wantParams router.Params
	}{
		{path: "/a/b", want: "literal", wantParams: router.Params{}},
		{path: "/a/c", want: "capture", wantParams: router.Params{"x": "c"}},
		{path: "/a/c/d", want: "wildcard", wantParams: router.Params{"rest": "c/d"}},
		{path: "/a/", want: "wildcard", wantParams: router.Params{"rest": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, params, ok := r.Match(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestMatchBacktracking(t *testing.T) {
	t.Parallel()

	// A literal edge that dead-ends must not shadow a capture edge that
	// completes the match.
	r := router.New[string]()
	require.NoError(t, r.Insert("/a/b/c", "deep-literal"))
	require.NoError(t, r.Insert("/a/{x}/d", "via-capture"))

	got, params, ok := r.Match("/a/b/d")
	require.True(t, ok)
	assert.Equal(t, "via-capture", got)
	assert.Equal(t, router.Params{"x": "b"}, params)
}

func TestMatchMisses(t *testing.T) {
	t.Parallel()

	r := router.New[string]()
	require.NoError(t, r.Insert("/a/{x}", "capture"))
	require.NoError(t, r.Insert("/exact", "exact"))

	for _, path := range []string{"", "a/b", "/b", "/a", "/a/b/c", "/exact/more"} {
		_, _, ok := r.Match(path)
		assert.False(t, ok, "path %q should not match", path)
	}
}

func TestMatchRoot(t *testing.T) {
	t.Parallel()

	r := router.New[string]()
	require.NoError(t, r.Insert("/", "root"))

	got, params, ok := r.Match("/")
	require.True(t, ok)
	assert.Equal(t, "root", got)
	assert.Empty(t, params)

	_, _, ok = r.Match("/x")
	assert.False(t, ok)
}

func TestMatchEmptySegmentNeverBindsCapture(t *testing.T) {
	t.Parallel()

	r := router.New[string]()
	require.NoError(t, r.Insert("/a/{x}", "capture"))

	_, _, ok := r.Match("/a/")
	assert.False(t, ok)
}
