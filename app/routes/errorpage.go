package routes

import (
	. "github.com/marycampus/advisor/el"
	"github.com/marycampus/advisor/internal/icons"
	"github.com/marycampus/advisor/pkg/server"
	"github.com/marycampus/advisor/pkg/vdom"
)

// ErrorPage renders when a route handler or a deferred page load
// fails. The error itself goes to the log, not the student.
func ErrorPage(ctx server.Ctx, err error) vdom.Component {
	ctx.Logger().Error("route failed", "path", ctx.Path(), "error", err)
	return vdom.Func(func() *VNode {
		return Section(Class("route-error"),
			Raw(icons.Icon("alert")),
			H1("Something went wrong"),
			P("That page could not be loaded. It has been reported; try again in a moment."),
			P(
				A(Href("/"), "Back to the chat"),
			),
		)
	})
}
