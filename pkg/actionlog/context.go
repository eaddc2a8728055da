package actionlog

import (
	"context"
	"fmt"

	"github.com/JailtonJunior94/devkit-go/pkg/observability"
)

// Enter opens a new action (§4.1). It assigns an id, starts the "action"
// span on obs (which Wrap intercepts to attach a Collector), runs body with
// the derived context, and guarantees the span is ended — and therefore the
// Record emitted — exactly once, whether body returns an error, succeeds, or
// panics.
//
// A panic inside body is recovered here rather than propagated: the
// framework-wide rule is that no exception escapes an action (§1, §7); a
// caller that wants a panic to still crash the process should not rely on
// recover happening elsewhere after this returns.
func Enter(ctx context.Context, obs observability.Observability, action string, refID *string, body func(context.Context) error) error {
	id := NewID()
	attrs := []observability.Field{
		observability.String("action", action),
		observability.String("action_id", id),
	}
	if refID != nil {
		attrs = append(attrs, observability.String("ref_id", *refID))
	}

	spanCtx, span := obs.Tracer().Start(ctx, "action", observability.WithAttributes(attrs...))
	defer span.End()

	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				obs.Logger().Error(spanCtx, fmt.Sprintf("recovered panic: %v", r),
					observability.String("error_code", "PANIC"))
				runErr = fmt.Errorf("actionlog: recovered panic: %v", r)
			}
		}()
		runErr = body(spanCtx)
	}()

	if runErr != nil {
		logError(obs.Logger(), spanCtx, runErr)
	}
	return runErr
}

// logError records a returned error against the current action, preserving
// severity and error code when it is an *Exception.
func logError(logger observability.Logger, ctx context.Context, err error) {
	exc, ok := err.(*Exception)
	if !ok {
		logger.Error(ctx, err.Error())
		return
	}

	fields := []observability.Field{}
	if exc.Code != "" {
		fields = append(fields, observability.String("error_code", exc.Code))
	}
	if exc.Severity == SeverityWarn {
		logger.Warn(ctx, exc.Message, fields...)
		return
	}
	logger.Error(ctx, exc.Message, fields...)
}

// CurrentID returns the action id for the action enclosing ctx, if any.
func CurrentID(ctx context.Context) (string, bool) {
	collector, ok := collectorFromContext(ctx)
	if !ok {
		return "", false
	}
	return collector.ID(), true
}
