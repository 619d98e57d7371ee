package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	limiter "github.com/ulule/limiter/v3"
	stdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/logging"
)

// loggingMiddleware logs HTTP requests and responses
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		// Generate request ID
		requestID := fmt.Sprintf("%d", time.Now().UnixNano())

		// Add request ID to context
		ctx := context.WithValue(r.Context(), "request_id", requestID)
		r = r.WithContext(ctx)

		// Log request
		s.logger.Info("HTTP Request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("remote_addr", r.RemoteAddr),
			logging.String("user_agent", r.Header.Get("User-Agent")),
			logging.RequestID(requestID),
			logging.Component("http"))

		// Call next handler
		next.ServeHTTP(rw, r)

		// Log response
		duration := time.Since(start)
		s.logger.Info("HTTP Response",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", rw.statusCode),
			logging.Float("duration_ms", duration.Seconds()*1000),
			logging.RequestID(requestID),
			logging.Component("http"))
	})
}

// errorRecoveryMiddleware recovers from panics and logs errors
func (s *Server) errorRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				// Log the panic
				s.logger.Error("Panic recovered",
					fmt.Errorf("panic: %v", err),
					logging.String("method", r.Method),
					logging.String("path", r.URL.Path),
					logging.Component("http"))

				// Return 500 error
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// newRateLimit builds a per-client rate limiting middleware from a rate
// string such as "100-S" (100 requests per second) or "1000-H"
func newRateLimit(period string) (mux.MiddlewareFunc, error) {
	rate, err := limiter.NewRateFromFormatted(period)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", period, err)
	}
	store := memory.NewStore()
	instance := limiter.New(store, rate)
	mw := stdlib.NewMiddleware(instance)
	return mw.Handler, nil
}

// TimeoutMiddleware wraps HTTP handlers with a timeout to prevent indefinite hangs
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.GetLogger()

			// Create a context with timeout
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			// Replace request context with timeout context
			r = r.WithContext(ctx)

			// Channel to signal completion
			done := make(chan struct{})

			// Run handler in goroutine
			go func() {
				defer func() {
					if rec := recover(); rec != nil {
						logger.Error("Panic in HTTP handler",
							fmt.Errorf("panic: %v", rec),
							logging.String("path", r.URL.Path),
							logging.Component("middleware"))
					}
					close(done)
				}()
				next.ServeHTTP(w, r)
			}()

			// Wait for completion or timeout
			select {
			case <-done:
				// Handler completed successfully
				return
			case <-ctx.Done():
				// Timeout occurred
				logger.Warn("Request timeout",
					logging.String("path", r.URL.Path),
					logging.String("method", r.Method),
					logging.String("timeout", timeout.String()),
					logging.Component("middleware"))

				// Only write error if headers haven't been sent yet
				if w.Header().Get("Content-Type") == "" {
					writeErrorResponse(w, http.StatusGatewayTimeout,
						"Request timeout - operation took too long")
				}
				return
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
