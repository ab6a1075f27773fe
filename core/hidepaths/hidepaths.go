// Package hidepaths diverts requests for reserved paths to a fallback
// handler so that configuration files consumed at startup (such as _headers
// and _redirects) are never servable as static assets.
package hidepaths

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/randomairborne/tunnelbana/core/router"
)

// Builder accumulates hidden path templates. Unlike the other routing
// tables, it collects every insertion error instead of stopping at the
// first, so a bad deployment reports all of its problems at once.
type Builder struct {
	hidden *router.Router[struct{}]
	errs   []error
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{hidden: router.New[struct{}]()}
}

// Hide registers one path template to divert.
func (b *Builder) Hide(route string) *Builder {
	if err := b.hidden.Insert(route, struct{}{}); err != nil {
		b.errs = append(b.errs, fmt.Errorf("hide %q: %w", route, err))
	}
	return b
}

// HideAll registers several templates at once.
func (b *Builder) HideAll(routes ...string) *Builder {
	for _, route := range routes {
		b.Hide(route)
	}
	return b
}

// Errors returns the insertion errors collected so far.
func (b *Builder) Errors() []error {
	return b.errs
}

// Build finalizes the Guard. If any insertion failed, all collected errors
// are returned joined and no Guard is produced.
func (b *Builder) Build(opts ...Option) (*Guard, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	g := &Guard{
		hidden:   b.hidden,
		notFound: http.HandlerFunc(defaultNotFound),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Option configures a Guard.
type Option func(*Guard)

// WithNotFound replaces the default bodyless 404 fallback.
func WithNotFound(h http.Handler) Option {
	return func(g *Guard) {
		g.notFound = h
	}
}

// WithLogger sets a logger for diverted requests.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// Guard routes hidden paths to the fallback handler and everything else to
// the wrapped handler. Immutable after Build.
type Guard struct {
	hidden   *router.Router[struct{}]
	notFound http.Handler
	logger   *slog.Logger
}

// Middleware wires the Guard around a downstream handler.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, hidden := g.hidden.Match(r.URL.Path); hidden {
			g.logger.InfoContext(r.Context(), "blocked request for hidden path", slog.String("path", r.URL.Path))
			g.notFound.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func defaultNotFound(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}
