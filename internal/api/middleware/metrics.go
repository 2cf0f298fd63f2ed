package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestRecorder receives one observation per HTTP request.
type RequestRecorder interface {
	RecordHTTPRequest(route, method string, status int, durationMs float64)
}

// UnmatchedRoute labels requests that no route matched.
const UnmatchedRoute = "unmatched"

// NewMetricsMiddleware records request counts and latency per chi route
// pattern, so /games/{id} is one series regardless of the ID.
func NewMetricsMiddleware(rec RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rec == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := UnmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			rec.RecordHTTPRequest(route, r.Method, status,
				float64(time.Since(start).Microseconds())/1000)
		})
	}
}
