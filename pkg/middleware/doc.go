// Package middleware provides observability middleware for advisor
// applications: Prometheus metrics, OpenTelemetry tracing, and
// structured resolution logging.
//
// All three wrap route resolution, the step that turns a matched
// route into a page handler. For eager routes that step is a map
// lookup; for deferred routes it includes the loader, so this is
// where slow first visits become visible.
//
// # Prometheus
//
//	r.Use(middleware.Prometheus())
//	http.Handle("/metrics", promhttp.Handler())
//
// Metrics collected:
//   - advisor_route_resolutions_total: resolutions by route and status
//   - advisor_route_resolve_duration_seconds: resolution duration histogram
//   - advisor_route_errors_total: failures by route and error kind
//   - advisor_lazy_resolutions_total: deferred loads by outcome
//
// Session-level counters come from a collector over the session
// manager, registered separately:
//
//	prometheus.MustRegister(middleware.NewManagerCollector(manager))
//
// # OpenTelemetry
//
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("campus-advisor"),
//	    middleware.WithTraceFilter(func(ctx server.Ctx) bool {
//	        return ctx.Path() != "/healthz"
//	    }),
//	))
//
// Spans are named after the route pattern and carry the concrete
// path, the render mode, and the session ID. Handlers reach the
// active span through SpanFromContext and propagate it outward with
// TraceContext:
//
//	row := db.QueryRowContext(middleware.TraceContext(ctx), "SELECT ...")
//
// # Logging
//
//	r.Use(middleware.Logging(logger))
//
// One slog line per resolution, with route, path, mode, and elapsed
// time.
package middleware
