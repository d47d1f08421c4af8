package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/DioGolang/lifthub/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Status labels are precomputed for the valid range.
var statusStrings [600]string

func init() {
	for i := 100; i < 600; i++ {
		statusStrings[i] = strconv.Itoa(i)
	}
}

func statusLabel(code int) string {
	if code >= 100 && code < 600 {
		return statusStrings[code]
	}
	return strconv.Itoa(code)
}

// Metrics records request latency labelled by the matched route pattern, so
// /api/v1/students/{cpf} stays a single series.
func Metrics(m metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				path := ""
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					path = rctx.RoutePattern()
				}
				if path == "" {
					path = "unknown"
				}
				m.ObserveHTTPRequestDuration(r.Method, path, statusLabel(ww.Status()), time.Since(start).Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
