package redirects

import (
	"fmt"
	"net/http"

	"golang.org/x/net/http/httpguts"

	"github.com/randomairborne/tunnelbana/core/router"
)

type target struct {
	interp *Interpolation
	code   int
}

// Table routes request paths to redirect targets. Built once at startup,
// then shared read-only between requests.
type Table struct {
	routes *router.Router[target]
}

// Build compiles validated rules into a Table. Overlapping or duplicated
// path templates surface as router insertion errors.
func Build(rules []Rule) (*Table, error) {
	routes := router.New[target]()
	for _, rule := range rules {
		if err := routes.Insert(rule.Path, target{interp: rule.Target, code: rule.Code}); err != nil {
			return nil, fmt.Errorf("redirect route %q: %w", rule.Path, err)
		}
	}
	return &Table{routes: routes}, nil
}

// Len reports the number of compiled redirect rules.
func (t *Table) Len() int {
	return t.routes.Len()
}

// Middleware short-circuits matching requests with a redirect. The target is
// rendered from the live capture values; parse-time validation covered the
// template shape, but a captured path segment can still contain bytes that
// are illegal in a header value, in which case the request gets a bare 500
// instead of a malformed Location header. Non-matching requests pass through
// untouched.
func (t *Table) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tgt, params, ok := t.routes.Match(r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		location, err := tgt.interp.Render(params)
		if err != nil || !httpguts.ValidHeaderFieldValue(location) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Location", location)
		w.WriteHeader(tgt.code)
	})
}
