package etags

import "net/http"

// Middleware wraps a downstream handler with conditional-request handling
// and ETag stamping.
//
// When the request path resolves to a known tag set and the client's
// If-None-Match value is contained in it, a bodyless 304 carrying that tag is
// returned without invoking the downstream handler at all. Otherwise the
// downstream response passes through a writer that, at header-commit time,
// selects the tag matching the response's Content-Encoding and inserts it as
// the ETag. Last-Modified is removed on every path so a second, less precise
// validator never competes with the fingerprint.
func (m *Map) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		set, ok := m.Lookup(r.URL.Path)
		if !ok {
			next.ServeHTTP(&tagWriter{ResponseWriter: w}, r)
			return
		}

		if inm := r.Header.Get("If-None-Match"); inm != "" && set.Contains(inm) {
			w.Header().Set("ETag", inm)
			w.WriteHeader(http.StatusNotModified)
			return
		}

		next.ServeHTTP(&tagWriter{ResponseWriter: w, tags: set}, r)
	})
}

// tagWriter rewrites validator headers exactly once, when the downstream
// handler commits its header block. The body streams through untouched.
type tagWriter struct {
	http.ResponseWriter
	tags        *ResourceTagSet
	wroteHeader bool
}

func (w *tagWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	h := w.Header()
	if w.tags != nil {
		if tag, ok := w.tags.ForEncoding(h.Get("Content-Encoding")); ok {
			h.Set("ETag", tag)
		}
	}
	h.Del("Last-Modified")

	w.ResponseWriter.WriteHeader(status)
}

func (w *tagWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher when the underlying writer supports it.
func (w *tagWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
