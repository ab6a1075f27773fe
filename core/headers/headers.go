package headers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/randomairborne/tunnelbana/core/router"
)

// Table routes request paths to the header groups that apply to them.
// Built once at startup, then shared read-only between requests.
type Table struct {
	routes *router.Router[[]Header]
}

// Build compiles parsed groups into a Table. Overlapping or duplicated path
// templates surface as router insertion errors.
func Build(groups []Group) (*Table, error) {
	routes := router.New[[]Header]()
	for _, g := range groups {
		if err := routes.Insert(g.Path, g.Headers); err != nil {
			return nil, fmt.Errorf("headers route %q: %w", g.Path, err)
		}
	}
	return &Table{routes: routes}, nil
}

// Lookup returns the headers configured for a request path, resolving a
// trailing slash to the directory index document first, matching what the
// file handler will actually serve.
func (t *Table) Lookup(requestPath string) ([]Header, bool) {
	if strings.HasSuffix(requestPath, "/") {
		requestPath += "index.html"
	}
	hdrs, _, ok := t.routes.Match(requestPath)
	return hdrs, ok
}

// Middleware tags responses with the configured headers. The headers are
// applied when the downstream handler commits its header block, in group
// order, so a later entry for a repeated name overrides the earlier one.
// The downstream body is streamed through untouched.
func (t *Table) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bonus, ok := t.Lookup(r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(&headerWriter{ResponseWriter: w, bonus: bonus}, r)
	})
}

type headerWriter struct {
	http.ResponseWriter
	bonus       []Header
	wroteHeader bool
}

func (w *headerWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	h := w.Header()
	for _, hdr := range w.bonus {
		h.Set(hdr.Name, hdr.Value)
	}

	w.ResponseWriter.WriteHeader(status)
}

func (w *headerWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher when the underlying writer supports it.
func (w *headerWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
