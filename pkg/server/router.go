package server

import (
	"context"

	"github.com/marycampus/advisor/pkg/vdom"
)

// Slot carries rendered child content into a layout.
type Slot = *vdom.VNode

// PageHandler builds the page component for a matched route. It runs
// once per navigation; the returned component re-renders after every
// event, so per-visit state belongs in the component.
type PageHandler func(ctx Ctx, params map[string]string) vdom.Component

// LayoutHandler wraps child content in shared chrome. Layouts nest:
// the root layout receives the output of every layout below it.
type LayoutHandler func(ctx Ctx, children Slot) *vdom.VNode

// APIHandler serves a JSON endpoint mounted on the same route tree as
// the pages.
type APIHandler func(ctx Ctx) (any, error)

// ErrorHandler renders the error page when a page handler or a lazy
// load fails.
type ErrorHandler func(ctx Ctx, err error) vdom.Component

// Middleware runs before a page or API handler. Returning an error
// aborts the chain; calling next continues it.
type Middleware interface {
	Handle(ctx Ctx, next func() error) error
}

// MiddlewareFunc adapts a function to the Middleware interface.
type MiddlewareFunc func(ctx Ctx, next func() error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ctx Ctx, next func() error) error {
	return f(ctx, next)
}

// RouteMatch is one matched route as sessions consume it.
type RouteMatch interface {
	// Resolve returns the page handler, loading it first when the
	// route is deferred. Eager routes never block.
	Resolve(ctx context.Context) (PageHandler, error)

	// GetParams returns the decoded path parameters.
	GetParams() map[string]string

	// GetLayouts returns the layout chain, outermost first.
	GetLayouts() []LayoutHandler

	// GetMiddleware returns the middleware chain, outermost first.
	GetMiddleware() []Middleware

	// GetPattern returns the registered pattern, for logs and metrics.
	GetPattern() string

	// IsLazy reports whether the route's handler is deferred.
	IsLazy() bool
}

// Router matches canonical paths to routes. Sessions depend on this
// interface only; the concrete implementation lives in pkg/router and
// is wired in through its adapter.
type Router interface {
	Match(method, path string) (RouteMatch, bool)
	NotFound() PageHandler
	ErrorPage() ErrorHandler
}

// runMiddleware runs the chain around final, outermost first.
func runMiddleware(ctx Ctx, chain []Middleware, final func() error) error {
	if len(chain) == 0 {
		return final()
	}
	var call func(i int) error
	call = func(i int) error {
		if i == len(chain) {
			return final()
		}
		return chain[i].Handle(ctx, func() error { return call(i + 1) })
	}
	return call(0)
}
