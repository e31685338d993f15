package middleware

import (
	"net/http"
	"time"

	"github.com/elarose/storefront/pkg/metrics"
)

// Metrics records request counts and latency labelled by route pattern.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)
			// the pattern is only complete once routing has finished
			m.Observe(r.Method, routePattern(r), rec.Status(), time.Since(start))
		})
	}
}
