package middleware

import (
	"net/http"
	"strconv"
	"time"

	"parties247/internal/metrics"
)

// Metrics records request latency labelled by the matched route pattern.
// Requests that match no route are grouped under "unmatched". It must wrap the
// ServeMux directly: the mux sets r.Pattern on the request it was handed.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).
			Observe(time.Since(start).Seconds())
	})
}
