package routes

import (
	"net/http"

	. "github.com/marycampus/advisor/el"
	"github.com/marycampus/advisor/internal/icons"
	"github.com/marycampus/advisor/pkg/server"
	"github.com/marycampus/advisor/pkg/vdom"
)

// NotFoundPage is the catch-all route. It shares the shell with every
// other page; during SSR it marks the response 404.
func NotFoundPage(ctx server.Ctx, params map[string]string) vdom.Component {
	ctx.Status(http.StatusNotFound)
	path := ctx.Path()
	return vdom.Func(func() *VNode {
		return Section(Class("not-found"),
			Raw(icons.Icon("search")),
			H1("Page not found"),
			P(Textf("Nothing lives at %s.", path)),
			P(
				A(Href("/"), "Back to the chat"),
			),
		)
	})
}
