// Package pipeline assembles the request-processing stages around the file
// handler.
//
// Every stage is an http.Handler wrapper with one of three behaviors per
// request: pass through untouched, short-circuit with its own response, or
// transform the eventual downstream response through a header-intercepting
// writer. Bodies always stream through; no stage buffers.
//
// The composition order is fixed. Header injection runs outermost so its
// headers land on every response, including redirects and 304s produced by
// inner stages. Redirect resolution comes next and may end the request
// before any file work happens. Fingerprint handling wraps the file serving
// so it can both answer conditional requests early and stamp validators onto
// whatever the file handler produces. Path hiding sits innermost, choosing
// between the real file handler and the not-found fallback.
package pipeline

import "net/http"

// Middleware wraps a handler with one pipeline stage.
type Middleware func(http.Handler) http.Handler

// Chain wraps h with the given middlewares; the first middleware listed is
// the outermost, so it sees the request first and the response last.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Stages holds the built routing structures, each optional. All of them are
// constructed before the server accepts connections and shared read-only by
// every concurrent request afterwards.
type Stages struct {
	Headers   Middleware // bonus response headers
	Redirects Middleware // redirect short-circuit
	ETags     Middleware // conditional requests and validator stamping
	HidePaths Middleware // reserved path diversion
}

// Handler composes the stages around the file handler in the fixed pipeline
// order. Nil stages are skipped.
func (s Stages) Handler(files http.Handler) http.Handler {
	var mws []Middleware
	for _, mw := range []Middleware{s.Headers, s.Redirects, s.ETags, s.HidePaths} {
		if mw != nil {
			mws = append(mws, mw)
		}
	}
	return Chain(files, mws...)
}
