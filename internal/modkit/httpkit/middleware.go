package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"supplysync/internal/platform/metrics"
	"supplysync/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	Metrics     *metrics.Metrics
	CORSOrigins []string
	SlowRequest time.Duration
}

// CommonStack returns the baseline middleware for the API.
// No request timeout here: import runs are synchronous and bounded by the server write timeout
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),

		middleware.RecoverJSON,
		middleware.NoCache(),

		middleware.Observe(middleware.ObserveOptions{Metrics: o.Metrics, Slow: o.SlowRequest}),

		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins, AllowCredentials: true}),
		middleware.Compress(flate.BestSpeed),
	}
}

// Auth guards a route group with p
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler { return middleware.Auth(p) }
