package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/angelmondragon/bookverse-backend/pkg/logger"
	"github.com/angelmondragon/bookverse-backend/pkg/metrics"
)

// Logging writes one access log entry per request and observes latency under
// the matched route pattern. Health probes log at debug.
func Logging(logg *logger.Logger, httpMetrics *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{"method": r.Method, "path": r.URL.Path})
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))
			took := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routeLabel(r)
			httpMetrics.Observe(r.Method, route, status, took)

			if logg == nil {
				return
			}
			ctx = logg.WithFields(ctx, map[string]any{
				"route":       route,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": took.Milliseconds(),
			})
			if route == "/health/live" || route == "/health/ready" || route == "/metrics" {
				logg.Debug(ctx, "http.request")
				return
			}
			logg.Info(ctx, "http.request")
		})
	}
}

// routeLabel bounds metric cardinality by using the chi pattern.
func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
