package middleware

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/marycampus/advisor/pkg/server"
)

func TestOpenTelemetryStoresTraceContext(t *testing.T) {
	ctx := server.NewTestContext("/qa", server.WithTestPattern("/qa"))

	mw := OpenTelemetry(
		WithTracerName("advisor-test"),
		WithAttributeExtractor(func(server.Ctx) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	)

	err := mw.Handle(ctx, func() error {
		if SpanFromContext(ctx) == nil {
			t.Fatal("expected a span during resolution")
		}
		_ = trace.SpanContextFromContext(TraceContext(ctx))
		return nil
	})
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	stored, ok := ctx.Value(traceContextKey).(context.Context)
	if !ok || stored == nil {
		t.Fatalf("stored trace context = %T, want context.Context", ctx.Value(traceContextKey))
	}
	if TraceContext(ctx) != stored {
		t.Fatal("TraceContext() should return the stored span context")
	}
	if SpanFromContext(ctx) == nil {
		t.Fatal("expected SpanFromContext to find the span after resolution")
	}
}

func TestOpenTelemetryErrorPropagates(t *testing.T) {
	ctx := server.NewTestContext("/qa", server.WithTestPattern("/qa"))

	wantErr := errors.New("loader blew up")
	err := OpenTelemetry().Handle(ctx, func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("Handle() error = %v, want %v", err, wantErr)
	}
	if _, ok := ctx.Value(traceContextKey).(context.Context); !ok {
		t.Fatal("expected trace context to be stored even on failure")
	}
}

func TestOpenTelemetryFilterSkips(t *testing.T) {
	ctx := server.NewTestContext("/healthz")

	nextCalled := false
	err := OpenTelemetry(
		WithTraceFilter(func(c server.Ctx) bool { return c.Path() != "/healthz" }),
	).Handle(ctx, func() error {
		nextCalled = true
		if SpanFromContext(ctx) != nil {
			t.Fatal("expected no span when filtered out")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !nextCalled {
		t.Fatal("expected next to run when filtered out")
	}
	if ctx.Value(traceContextKey) != nil {
		t.Fatal("expected no stored trace context when filtered out")
	}
}

func TestTraceContextFallsBack(t *testing.T) {
	ctx := server.NewTestContext("/qa")
	if SpanFromContext(ctx) != nil {
		t.Fatal("expected nil span before any trace")
	}
	if TraceContext(ctx) != ctx.StdContext() {
		t.Fatal("expected TraceContext to fall back to StdContext")
	}
}

func TestSpanName(t *testing.T) {
	tests := []struct {
		name string
		ctx  server.Ctx
		want string
	}{
		{"pattern", server.NewTestContext("/qa/7", server.WithTestPattern("/qa/:id")), "resolve /qa/:id"},
		{"path fallback", server.NewTestContext("/profile"), "resolve /profile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spanName(tt.ctx); got != tt.want {
				t.Fatalf("spanName() = %q, want %q", got, tt.want)
			}
		})
	}
}
