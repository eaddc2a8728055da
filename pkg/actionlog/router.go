package actionlog

import (
	"context"
	"runtime"

	"github.com/JailtonJunior94/devkit-go/pkg/observability"
)

type contextKey int

const collectorContextKey contextKey = iota

// collectorFromContext returns the Collector owned by the nearest enclosing
// "action" span, if any (§4.3 invariant: exactly one Collector per action,
// located at the nearest ancestor).
func collectorFromContext(ctx context.Context) (*Collector, bool) {
	c, ok := ctx.Value(collectorContextKey).(*Collector)
	return c, ok
}

func contextWithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, collectorContextKey, c)
}

// Wrap decorates inner so that every span named "action" gets a Collector,
// every other span and every log event reaching a Collector-bearing context
// is routed to it, and on action close the Record is handed to appender.
// A plain console sink (console) always receives Info/Warn/Error events
// regardless of whether they are inside an action, mirroring the
// always-active process-wide sink of §4.3.
func Wrap(inner observability.Observability, console observability.Logger, appender Appender) observability.Observability {
	return &router{inner: inner, console: console, appender: appender}
}

type router struct {
	inner    observability.Observability
	console  observability.Logger
	appender Appender
}

func (r *router) Tracer() observability.Tracer {
	return &routerTracer{router: r, inner: r.inner.Tracer()}
}

func (r *router) Logger() observability.Logger {
	return &routerLogger{router: r, console: r.console}
}

func (r *router) Metrics() observability.Metrics {
	return r.inner.Metrics()
}

type routerTracer struct {
	router *router
	inner  observability.Tracer
}

func (t *routerTracer) Start(ctx context.Context, spanName string, opts ...observability.SpanOption) (context.Context, observability.Span) {
	innerCtx, innerSpan := t.inner.Start(ctx, spanName, opts...)
	cfg := observability.NewSpanConfig(opts)

	if spanName == "action" {
		if _, already := collectorFromContext(ctx); already {
			// Nested "action" spans are not expected (§4.1: fan-out opens a
			// new, independent action rather than nesting); fall through
			// untouched rather than double-collect.
			return innerCtx, innerSpan
		}

		action, id, refID, ok := extractActionFields(cfg.Attributes())
		if !ok {
			return innerCtx, innerSpan
		}

		collector := NewCollector(id, action, refID)
		spanCtx := contextWithCollector(innerCtx, collector)
		return spanCtx, &actionSpanWrapper{Span: innerSpan, router: t.router, collector: collector}
	}

	collector, ok := collectorFromContext(ctx)
	if !ok {
		return innerCtx, innerSpan
	}

	collector.OnSpanOpen(spanName, cfg.Attributes())
	return innerCtx, &nestedSpanWrapper{Span: innerSpan, name: spanName, collector: collector}
}

func (t *routerTracer) SpanFromContext(ctx context.Context) observability.Span {
	return t.inner.SpanFromContext(ctx)
}

func (t *routerTracer) ContextWithSpan(ctx context.Context, span observability.Span) context.Context {
	return t.inner.ContextWithSpan(ctx, span)
}

func extractActionFields(fields []observability.Field) (action, id string, refID *string, ok bool) {
	for _, f := range fields {
		s, isStr := f.Value.(string)
		if !isStr {
			continue
		}
		switch f.Key {
		case "action":
			action = s
		case "action_id":
			id = s
		case "ref_id":
			v := s
			refID = &v
		}
	}
	return action, id, refID, action != "" && id != ""
}

// actionSpanWrapper closes the Collector and hands the Record to the
// Appender when the "action" span ends.
type actionSpanWrapper struct {
	observability.Span
	router    *router
	collector *Collector
}

func (s *actionSpanWrapper) End() {
	record := s.collector.Close()
	s.router.appender.Append(context.Background(), record)
	s.Span.End()
}

// nestedSpanWrapper notifies the owning Collector when a non-action span
// closes (§4.2 OnSpanClose).
type nestedSpanWrapper struct {
	observability.Span
	name      string
	collector *Collector
}

func (s *nestedSpanWrapper) End() {
	s.collector.OnSpanClose(s.name)
	s.Span.End()
}

type routerLogger struct {
	router  *router
	console observability.Logger
}

func (l *routerLogger) Debug(ctx context.Context, msg string, fields ...observability.Field) {
	l.route(ctx, LevelDebug, msg, fields)
}

func (l *routerLogger) Info(ctx context.Context, msg string, fields ...observability.Field) {
	l.console.Info(ctx, msg, fields...)
	l.route(ctx, LevelInfo, msg, fields)
}

func (l *routerLogger) Warn(ctx context.Context, msg string, fields ...observability.Field) {
	l.console.Warn(ctx, msg, fields...)
	l.route(ctx, LevelWarn, msg, fields)
}

func (l *routerLogger) Error(ctx context.Context, msg string, fields ...observability.Field) {
	l.console.Error(ctx, msg, fields...)
	l.route(ctx, LevelError, msg, fields)
}

func (l *routerLogger) With(fields ...observability.Field) observability.Logger {
	return &routerLogger{router: l.router, console: l.console.With(fields...)}
}

func (l *routerLogger) route(ctx context.Context, level Level, msg string, fields []observability.Field) {
	collector, ok := collectorFromContext(ctx)
	if !ok {
		return
	}
	target, line := callerLocation()
	collector.OnEvent(level, target, line, msg, fields)
}

func callerLocation() (string, int) {
	_, file, line, ok := runtime.Caller(3)
	if !ok {
		return "", 0
	}
	return file, line
}
