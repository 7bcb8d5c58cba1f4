package middleware

import (
	"net/http"
	"time"

	"supplysync/internal/platform/logger"
	"supplysync/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// ObserveOptions configures Observe
type ObserveOptions struct {
	// Metrics receives request count and latency; nil records nothing
	Metrics *metrics.Metrics

	// Slow logs requests taking at least this long at warn; zero disables it
	Slow time.Duration
}

// Observe writes one access log line per request and records it in metrics.
// Both are keyed by route pattern: imports and refreshes block for a whole
// run, and /imports/runs/{id} must stay one series
func Observe(o ObserveOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			if o.Metrics != nil {
				o.Metrics.RecordRequest(r.Method, route, status, elapsed)
			}

			log := logger.C(r.Context())
			evt := log.Info()
			switch {
			case status >= http.StatusInternalServerError:
				evt = log.Error()
			case o.Slow > 0 && elapsed >= o.Slow:
				evt = log.Warn()
			}
			evt.Int("status", status).
				Dur("elapsed", elapsed).
				Str("method", r.Method).
				Str("route", route).
				Str("path", r.URL.Path).
				Int("bytes", ww.BytesWritten()).
				Msg("request done")
		})
	}
}

// routePattern is read after the handler ran, once chi has matched
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
