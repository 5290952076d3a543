// Package advisor wires the campus advising web application together:
// route table, live session server, SSR rendering, static files, and
// the one-time boot sequence.
//
// Typical use:
//
//	app, err := advisor.New(advisor.Config{Title: "Campus Advisor"})
//	if err != nil { ... }
//	if err := routes.Register(app); err != nil { ... }
//	if err := app.Boot(); err != nil { ... }
//	http.ListenAndServe(":8080", app)
package advisor

import (
	"github.com/marycampus/advisor/pkg/router"
	"github.com/marycampus/advisor/pkg/server"
	"github.com/marycampus/advisor/pkg/vdom"
)

// Aliases so app code reads against one import.
type (
	// Ctx is the per-render context handed to pages, layouts, and
	// handlers.
	Ctx = server.Ctx

	// Slot carries rendered child content into a layout.
	Slot = server.Slot

	// VNode is a node in the rendered tree.
	VNode = vdom.VNode

	// Component is anything that renders to a VNode.
	Component = vdom.Component

	// PageHandler builds the page component for a matched route.
	PageHandler = server.PageHandler

	// LayoutHandler wraps child content in shared chrome.
	LayoutHandler = server.LayoutHandler

	// APIHandler serves a JSON endpoint.
	APIHandler = server.APIHandler

	// ErrorHandler renders the error page for a failed route.
	ErrorHandler = server.ErrorHandler

	// Middleware runs around route resolution.
	Middleware = server.Middleware

	// MiddlewareFunc adapts a function to Middleware.
	MiddlewareFunc = server.MiddlewareFunc

	// Route declares one entry in the route table.
	Route = router.Route

	// Loader produces a lazy route's page handler on first activation.
	Loader = router.Loader

	// Event is a client interaction delivered to an event handler.
	Event = server.Event

	// FormData holds submitted form values.
	FormData = server.FormData
)

// Func adapts a render function to a Component.
func Func(render func() *VNode) Component { return vdom.Func(render) }

// WithReplace makes a navigation replace the current history entry.
var WithReplace = server.WithReplace
