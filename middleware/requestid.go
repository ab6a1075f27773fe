// Package middleware provides plain net/http middleware shared by the
// request pipeline: request IDs and structured request logging.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// requestIDContextKey is used as a key for storing request ID in request context.
type requestIDContextKey struct{}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool
	// Generator creates new request IDs (default: UUID v4)
	Generator func() string
	// HeaderName specifies the header name for the request ID (default: "X-Request-ID")
	HeaderName string
	// UseExisting determines whether to use an existing request ID from the incoming request
	UseExisting bool
}

// RequestID creates a request ID middleware with default configuration.
// It generates a new UUID for each request and includes it in both context and response headers.
func RequestID() func(http.Handler) http.Handler {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig creates a request ID middleware with custom configuration.
// The ID is stored in context and added to response headers.
func RequestIDWithConfig(cfg RequestIDConfig) func(http.Handler) http.Handler {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Request-ID"
	}

	if cfg.Generator == nil {
		cfg.Generator = func() string {
			return uuid.New().String()
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			var requestID string
			if cfg.UseExisting {
				requestID = r.Header.Get(cfg.HeaderName)
			}
			if requestID == "" {
				requestID = cfg.Generator()
			}

			w.Header().Set(cfg.HeaderName, requestID)

			ctx := context.WithValue(r.Context(), requestIDContextKey{}, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID retrieves the request ID from the request context.
// Returns the request ID and a boolean indicating whether it was found.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey{}).(string)
	return id, ok
}
