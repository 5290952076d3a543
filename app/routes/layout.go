package routes

import (
	"github.com/marycampus/advisor/app/components/shared"
	. "github.com/marycampus/advisor/el"
	"github.com/marycampus/advisor/pkg/server"
	"github.com/marycampus/advisor/pkg/toast"
)

// mountID is the id of the element route content mounts into. It must
// match the application's configured mount id; boot verifies that.
const mountID = "app"

// AppLayout is the shell around every page: navigation, the mount
// node, toasts, and the footer.
func AppLayout(ctx server.Ctx, children server.Slot) *VNode {
	return Div(Class("site"),
		shared.Navbar(ctx.Path()),
		Main(ID(mountID), Class("site-main"),
			children,
		),
		toast.View(ctx),
		shared.PageFooter(),
	)
}
