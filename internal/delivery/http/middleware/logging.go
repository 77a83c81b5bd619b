package middleware

import (
	"log/slog"
	"net/http"
	"time"

	h "eventmanager/internal/delivery/http/helpers"
)

// responseWriter wraps http.ResponseWriter to capture status code and bytes written.
type responseWriter struct {
	http.ResponseWriter
	status      int
	written     int64
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (n int, err error) {
	w.wroteHeader = true
	n, err = w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// LoggingMiddleware logs each request with method, path, status, size and
// duration at a level derived from the status: error for 5xx, warn for 4xx.
// A panic in next is logged and answered with 500.
func LoggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "panic", "path", r.URL.Path, "method", r.Method, "panic", rec)
				if !wrapped.wroteHeader {
					h.WriteJSONError(wrapped, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
				}
			}
			level := slog.LevelInfo
			switch {
			case wrapped.status >= 500:
				level = slog.LevelError
			case wrapped.status >= 400:
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"bytes", wrapped.written,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}()
		next.ServeHTTP(wrapped, r)
	})
}
