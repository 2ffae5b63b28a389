package middleware

import (
	"net/http"
	"time"

	"PartsKeeper/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// WithMetrics считает запросы по шаблону маршрута chi, а не по сырому пути.
func WithMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		data := &responseData{}
		next.ServeHTTP(&loggingResponseWriter{ResponseWriter: w, data: data}, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := data.status
		if status == 0 {
			status = http.StatusOK
		}
		metrics.ObserveHTTP(route, r.Method, status, time.Since(start))
	})
}
