package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/marycampus/advisor/pkg/server"
)

// Default tracer name.
const defaultTracerName = "advisor"

// traceContextKey is the session value key holding the span context
// of the most recent traced resolution.
const traceContextKey = "advisor.trace.context"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName names the tracer (default: "advisor").
	TracerName string

	// IncludeSessionID adds the session ID to spans. Enabled by
	// default; session IDs are server-generated and carry no user
	// data.
	IncludeSessionID bool

	// Filter decides which resolutions to trace. Nil traces all.
	Filter func(ctx server.Ctx) bool

	// AttributeExtractor adds custom attributes per traced
	// resolution.
	AttributeExtractor func(ctx server.Ctx) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeSessionID toggles the session ID span attribute.
func WithIncludeSessionID(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeSessionID = include
	}
}

// WithTraceFilter sets the resolution filter.
func WithTraceFilter(filter func(ctx server.Ctx) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ctx server.Ctx) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:       defaultTracerName,
		IncludeSessionID: true,
	}
}

// OpenTelemetry returns middleware that opens a span around every
// route resolution. The span carries the route pattern, the concrete
// path, and the render mode; deferred loaders run inside it, so slow
// first visits to a lazy route show up as long resolution spans.
//
// The span context is stored on the session under a well-known key;
// SpanFromContext and TraceContext read it back for downstream calls.
//
// The tracer comes from the global provider. Configure it in main()
// before serving:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) server.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return server.MiddlewareFunc(func(ctx server.Ctx, next func() error) error {
		if config.Filter != nil && !config.Filter(ctx) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("advisor.route", routeLabel(ctx)),
			attribute.String("advisor.path", ctx.Path()),
			attribute.String("advisor.mode", ctx.Mode().String()),
		}
		if config.IncludeSessionID {
			if sess := ctx.Session(); sess != nil {
				attrs = append(attrs, attribute.String("advisor.session_id", sess.ID))
			}
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(ctx)...)
		}

		spanCtx, span := config.tracer.Start(
			ctx.StdContext(),
			spanName(ctx),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		ctx.SetValue(traceContextKey, spanCtx)

		err := next()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}

// SpanFromContext returns the span of the most recent traced
// resolution, or nil when nothing has been traced.
//
//	if span := middleware.SpanFromContext(ctx); span != nil {
//	    span.SetAttributes(attribute.Int("faq.entries", n))
//	}
func SpanFromContext(ctx server.Ctx) trace.Span {
	if spanCtx, ok := ctx.Value(traceContextKey).(context.Context); ok {
		return trace.SpanFromContext(spanCtx)
	}
	return nil
}

// TraceContext returns a context carrying the active trace, for
// propagation into outbound calls. Falls back to ctx.StdContext()
// when nothing has been traced.
func TraceContext(ctx server.Ctx) context.Context {
	if spanCtx, ok := ctx.Value(traceContextKey).(context.Context); ok {
		return spanCtx
	}
	return ctx.StdContext()
}

// spanName names resolution spans after the route pattern.
func spanName(ctx server.Ctx) string {
	return "resolve " + routeLabel(ctx)
}
