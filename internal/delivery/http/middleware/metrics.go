package middleware

import (
	"net/http"
	"strconv"
	"time"

	"eventboard/internal/metrics"
)

// Metrics records request count and latency per matched route pattern.
// It must wrap the ServeMux so the pattern is known once the handler returns.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := wrapResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(wrapped.status), time.Since(start))
	})
}
