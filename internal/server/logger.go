package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/woozymasta/lakemap/internal/metrics"

	"github.com/rs/zerolog/log"
)

// RequestLogger is a middleware to log HTTP requests and record their metrics.
// m may be nil.
func RequestLogger(m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		if m != nil {
			m.Observe(routeLabel(r.URL.Path), ww.statusCode, elapsed)
		}

		ev := log.Info()
		// tiles are requested in bursts of dozens per pan
		if strings.HasPrefix(r.URL.Path, "/tiles/") {
			ev = log.Trace()
		}
		ev.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.statusCode).
			Str("ip", r.RemoteAddr).
			Dur("duration", elapsed).
			Msg("Request processed")
	})
}

// routeLabel maps a request path onto a bounded set of metric labels.
func routeLabel(path string) string {
	switch path {
	case "/", "/api/view", "/lakes.json", "/healthz", "/metrics", "/favicon.svg":
		return path
	}
	if strings.HasPrefix(path, "/tiles/") {
		return "/tiles"
	}
	return "other"
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing to the underlying response writer.
func (w *responseWriterWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
