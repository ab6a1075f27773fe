package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/randomairborne/tunnelbana/core/logger"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool

	// Logger is the slog logger to use (default: slog.Default())
	Logger *slog.Logger

	// LogLevel for request logging (default: slog.LevelInfo)
	LogLevel slog.Level

	// SlowRequestThreshold logs slow requests at warning level (default: 5s)
	SlowRequestThreshold time.Duration

	// Component name for structured logging
	Component string
}

// Logging creates a request logging middleware with the given logger.
// It logs one line per completed request with method, path, status, size,
// duration, client IP, and the request ID when one is present.
func Logging(log *slog.Logger) func(http.Handler) http.Handler {
	return LoggingWithConfig(LoggingConfig{Logger: log})
}

// LoggingWithConfig creates a request logging middleware with custom configuration.
func LoggingWithConfig(cfg LoggingConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.LogLevel == 0 {
		cfg.LogLevel = slog.LevelInfo
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}

	log := cfg.Logger
	if cfg.Component != "" {
		log = log.With(logger.Component(cfg.Component))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			level := cfg.LogLevel
			if elapsed >= cfg.SlowRequestThreshold {
				level = slog.LevelWarn
			}

			requestID, _ := GetRequestID(r.Context())

			log.LogAttrs(r.Context(), level, "request completed",
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.StatusCode(rec.status()),
				logger.BytesOut(rec.bytes),
				logger.Duration(elapsed),
				logger.ClientIP(clientIP(r)),
				logger.RequestID(requestID),
			)
		})
	}
}

// statusRecorder captures the status code and response size for logging
// while passing everything through to the underlying writer.
type statusRecorder struct {
	http.ResponseWriter
	code  int
	bytes int64
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.code == 0 {
		rec.code = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(p []byte) (int, error) {
	if rec.code == 0 {
		rec.code = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(p)
	rec.bytes += int64(n)
	return n, err
}

func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rec *statusRecorder) status() int {
	if rec.code == 0 {
		return http.StatusOK
	}
	return rec.code
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
