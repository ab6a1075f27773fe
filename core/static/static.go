// Package static serves files from a directory the way an edge host would:
// directory requests resolve to their index document, precompressed sibling
// files are served when the client accepts their encoding, and misses fall
// through to a configurable not-found handler (an error page, or the index
// document for single-page apps).
//
// The package handles GET and HEAD only, delegates range and conditional
// handling to http.ServeContent, and never lists directories.
package static

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// variant pairs a Content-Encoding token with the suffix of its
// precompressed sibling file, in server preference order.
var variants = [...]struct{ encoding, ext string }{
	{"br", ".br"},
	{"zstd", ".zst"},
	{"gzip", ".gz"},
	{"deflate", ".zz"},
}

type dirConfig struct {
	notFound http.Handler
}

// Option configures a directory handler.
type Option func(*dirConfig)

// WithNotFound sets the handler invoked when no file matches the request.
// The default replies with a bodyless 404.
func WithNotFound(h http.Handler) Option {
	return func(c *dirConfig) {
		c.notFound = h
	}
}

// Dir creates a handler serving the tree rooted at root. The root must
// exist and be a directory; anything else is a startup error.
func Dir(root string, opts ...Option) (http.Handler, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("static dir %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static dir %s: not a directory", root)
	}

	cfg := dirConfig{notFound: http.HandlerFunc(bareNotFound)}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &dirHandler{root: root, notFound: cfg.notFound}, nil
}

type dirHandler struct {
	root     string
	notFound http.Handler
}

func (h *dirHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	urlPath := r.URL.Path
	if !strings.HasPrefix(urlPath, "/") {
		urlPath = "/" + urlPath
	}
	clean := path.Clean(urlPath)
	if strings.HasSuffix(urlPath, "/") && clean != "/" {
		clean += "/"
	}

	name := clean
	if strings.HasSuffix(name, "/") {
		name += "index.html"
	}

	fsPath, ok := h.resolve(name)
	if !ok {
		h.notFound.ServeHTTP(w, r)
		return
	}

	info, err := os.Stat(fsPath)
	if err != nil {
		h.notFound.ServeHTTP(w, r)
		return
	}

	// A directory requested without a trailing slash redirects to its
	// canonical form so relative links and the fingerprint lookup agree.
	if info.IsDir() {
		localRedirect(w, r, clean+"/")
		return
	}

	serveFile(w, r, fsPath, info)
}

// resolve maps a rooted, cleaned URL path onto the filesystem and refuses
// anything that would escape the root.
func (h *dirHandler) resolve(name string) (string, bool) {
	if strings.Contains(name, "\x00") {
		return "", false
	}
	fsPath := filepath.Join(h.root, filepath.FromSlash(name))
	if fsPath != h.root && !strings.HasPrefix(fsPath, h.root+string(filepath.Separator)) {
		return "", false
	}
	return fsPath, true
}

// serveFile picks the best precompressed variant the client accepts and
// hands the chosen file to http.ServeContent for range and conditional
// handling. Variant responses keep the Content-Type of the base file.
func serveFile(w http.ResponseWriter, r *http.Request, fsPath string, info os.FileInfo) {
	w.Header().Add("Vary", "Accept-Encoding")

	accepted := acceptedEncodings(r.Header.Get("Accept-Encoding"))
	for _, v := range variants {
		if !accepted[v.encoding] {
			continue
		}
		f, err := os.Open(fsPath + v.ext)
		if err != nil {
			continue
		}
		vinfo, err := f.Stat()
		if err != nil || vinfo.IsDir() {
			f.Close()
			continue
		}
		defer f.Close()

		w.Header().Set("Content-Encoding", v.encoding)
		w.Header().Set("Content-Type", contentType(fsPath))
		http.ServeContent(w, r, "", vinfo.ModTime(), f)
		return
	}

	f, err := os.Open(fsPath)
	if err != nil {
		// The caller already statted the path; losing it here is a race
		// with an external delete.
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	http.ServeContent(w, r, filepath.Base(fsPath), info.ModTime(), f)
}

// acceptedEncodings parses an Accept-Encoding header into the set of usable
// codings. Quality values are honored only as far as q=0 meaning "never".
func acceptedEncodings(header string) map[string]bool {
	if header == "" {
		return nil
	}
	accepted := make(map[string]bool)
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(part, ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding == "" {
			continue
		}
		if q, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if v := strings.TrimSpace(q); v == "0" || v == "0.0" || v == "0.00" || v == "0.000" {
				continue
			}
		}
		accepted[coding] = true
	}
	return accepted
}

func contentType(fsPath string) string {
	if ctype := mime.TypeByExtension(filepath.Ext(fsPath)); ctype != "" {
		return ctype
	}
	return "application/octet-stream"
}

// localRedirect issues a relative redirect, preserving any query string.
func localRedirect(w http.ResponseWriter, r *http.Request, newPath string) {
	if q := r.URL.RawQuery; q != "" {
		newPath += "?" + q
	}
	w.Header().Set("Location", newPath)
	w.WriteHeader(http.StatusMovedPermanently)
}

func bareNotFound(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}

// FileHandler serves a single file with a forced status code, honoring
// precompressed siblings. It backs the not-found fallback (404.html) and the
// SPA index fallback. A missing file degrades to a bodyless response with
// the configured status at request time, matching how an absent 404.html
// behaves on edge hosts.
func FileHandler(root, name string, status int) http.Handler {
	fsPath := filepath.Join(filepath.Clean(root), filepath.FromSlash(name))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, err := os.Stat(fsPath)
		if err != nil || info.IsDir() {
			w.WriteHeader(status)
			return
		}

		if status == http.StatusOK {
			serveFile(w, r, fsPath, info)
			return
		}

		serveFileWithStatus(w, r, fsPath, status)
	})
}

// serveFileWithStatus writes a complete file body under a non-2xx status.
// Range and conditional handling deliberately do not apply to error pages.
func serveFileWithStatus(w http.ResponseWriter, r *http.Request, fsPath string, status int) {
	w.Header().Add("Vary", "Accept-Encoding")

	accepted := acceptedEncodings(r.Header.Get("Accept-Encoding"))
	chosen := fsPath
	for _, v := range variants {
		if !accepted[v.encoding] {
			continue
		}
		if info, err := os.Stat(fsPath + v.ext); err == nil && !info.IsDir() {
			chosen = fsPath + v.ext
			w.Header().Set("Content-Encoding", v.encoding)
			break
		}
	}

	body, err := os.ReadFile(chosen)
	if err != nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", contentType(fsPath))
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}
