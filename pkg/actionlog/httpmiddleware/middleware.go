// Package httpmiddleware wraps every HTTP request except /health-check in
// an "http" action (§6), recording the request method, path, matched route
// and content length as action context and the response status as a stat.
// Request headers are not recorded.
// Grounded on pkg/http_server/chi_server/middleware.go's recoverMiddleware
// and requestIDMiddleware (panic-safe wrapper, google/uuid correlation id).
package httpmiddleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// HealthCheckPath is excluded from action wrapping (§6).
const HealthCheckPath = "/health-check"

// statusRecorder tracks the status code written, since
// pkg/http_server/common.ResponseWriter only tracks whether headers were
// written at all, not which code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Wrap returns chi-compatible middleware that enters an "http" action around
// every request other than HealthCheckPath. The ref_id attached to the
// action is the incoming X-Request-ID header, or a freshly generated one.
func Wrap(obs observability.Observability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == HealthCheckPath {
				next.ServeHTTP(w, r)
				return
			}

			requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
			if requestID == "" {
				requestID = uuid.New().String()
			}

			rec := &statusRecorder{ResponseWriter: w}

			_ = actionlog.Enter(r.Context(), obs, "http", &requestID, func(ctx context.Context) error {
				route := chi.RouteContext(ctx)
				routePattern := ""
				if route != nil {
					routePattern = route.RoutePattern()
				}

				obs.Logger().Info(ctx, "context",
					observability.String("method", r.Method),
					observability.String("path", r.URL.Path),
					observability.String("route", routePattern),
					observability.Int64("content_length", r.ContentLength),
				)

				next.ServeHTTP(rec, r.WithContext(ctx))

				obs.Logger().Info(ctx, "stats",
					observability.Int("response_status", rec.status),
				)
				return nil
			})
		})
	}
}
