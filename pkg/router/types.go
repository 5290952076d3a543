package router

import (
	"context"
	"errors"

	"github.com/marycampus/advisor/pkg/server"
)

// The handler types are the runtime's: routes declared here plug
// straight into a session without conversion.
type (
	// Slot carries rendered child content into a layout.
	Slot = server.Slot

	// PageHandler renders a page for a matched route.
	PageHandler = server.PageHandler

	// LayoutHandler wraps child content in shared chrome. Layouts
	// nest: the root layout receives the output of every layout below
	// it.
	LayoutHandler = server.LayoutHandler

	// APIHandler serves a JSON endpoint mounted on the same tree as
	// pages.
	APIHandler = server.APIHandler

	// ErrorHandler renders the error page when a handler or a lazy
	// load fails.
	ErrorHandler = server.ErrorHandler

	// Middleware runs before a page or API handler. Returning an
	// error aborts the chain; calling next continues it.
	Middleware = server.Middleware

	// MiddlewareFunc adapts a function to the Middleware interface.
	MiddlewareFunc = server.MiddlewareFunc
)

// MatchResult describes a matched route.
type MatchResult struct {
	// Page is the handler for an eagerly registered route. Nil when the
	// route is lazy; resolve through Lazy instead.
	Page PageHandler

	// Lazy is the resolver cell for a lazily registered route. Nil for
	// eager routes.
	Lazy *LazyCell

	// API is the handler for an API route. Nil for page routes.
	API APIHandler

	// Layouts are the layout handlers from root to leaf, in the order
	// they should wrap the page (outermost first).
	Layouts []LayoutHandler

	// Middleware is the chain from root to leaf, global middleware first.
	Middleware []Middleware

	// Params holds decoded path parameters, including the catch-all
	// remainder under its registered name.
	Params map[string]string

	// Pattern is the registered route pattern, for logging and metrics.
	Pattern string
}

// ErrNoPage is returned by Resolve on a match that carries only an API
// handler.
var ErrNoPage = errors.New("router: match has no page handler")

// Resolve returns the matched page handler, loading it first when the
// route is lazy. For eager routes it never blocks.
func (m *MatchResult) Resolve(ctx context.Context) (PageHandler, error) {
	if m.Page != nil {
		return m.Page, nil
	}
	if m.Lazy != nil {
		return m.Lazy.Resolve(ctx)
	}
	return nil, ErrNoPage
}

// GetParams returns the decoded path parameters.
func (m *MatchResult) GetParams() map[string]string { return m.Params }

// GetLayouts returns the layout chain, outermost first.
func (m *MatchResult) GetLayouts() []LayoutHandler { return m.Layouts }

// GetMiddleware returns the middleware chain, global first.
func (m *MatchResult) GetMiddleware() []Middleware { return m.Middleware }

// GetPattern returns the registered pattern.
func (m *MatchResult) GetPattern() string { return m.Pattern }

// IsLazy reports whether the route resolves through a cell.
func (m *MatchResult) IsLazy() bool { return m.Lazy != nil }

// Adapter presents a built Router to the session runtime.
type Adapter struct {
	*Router
}

// Match narrows the concrete match to the runtime's contract.
func (a Adapter) Match(method, path string) (server.RouteMatch, bool) {
	m, ok := a.Router.Match(method, path)
	if !ok {
		return nil, false
	}
	return m, true
}

var (
	_ server.Router     = Adapter{}
	_ server.RouteMatch = (*MatchResult)(nil)
)
