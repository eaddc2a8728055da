// Package fibermiddleware is the Fiber counterpart to
// pkg/actionlog/httpmiddleware: it wraps every request except
// HealthCheckPath in an "http" action (§6), recording the same request
// line, route, content length and response status context. Grounded on
// httpmiddleware.Wrap, adapted from net/http's ResponseWriter/Handler pair
// to fiber.Ctx and fiber.Handler.
package fibermiddleware

import (
	"context"
	"strings"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HealthCheckPath is excluded from action wrapping, matching
// httpmiddleware.HealthCheckPath.
const HealthCheckPath = "/health-check"

// Wrap returns Fiber middleware that enters an "http" action around every
// request other than HealthCheckPath. The ref_id attached to the action is
// the incoming X-Request-ID header, or a freshly generated one.
func Wrap(obs observability.Observability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == HealthCheckPath {
			return c.Next()
		}

		requestID := strings.TrimSpace(c.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.New().String()
		}

		var handlerErr error
		_ = actionlog.Enter(c.UserContext(), obs, "http", &requestID, func(ctx context.Context) error {
			c.SetUserContext(ctx)

			obs.Logger().Info(ctx, "context",
				observability.String("method", c.Method()),
				observability.String("path", c.Path()),
				observability.String("route", c.Route().Path),
				observability.Int64("content_length", int64(len(c.Body()))),
			)

			handlerErr = c.Next()

			obs.Logger().Info(ctx, "stats",
				observability.Int("response_status", c.Response().StatusCode()),
			)
			return nil
		})
		return handlerErr
	}
}
