// Package shared holds view components used across pages.
package shared

import (
	. "github.com/marycampus/advisor/el"
	"github.com/marycampus/advisor/internal/icons"
)

type navLink struct {
	href  string
	label string
	icon  string
}

var navLinks = []navLink{
	{href: "/", label: "Chat", icon: "chat"},
	{href: "/qa", label: "Q&A", icon: "question"},
	{href: "/profile", label: "Profile", icon: "user"},
}

// Navbar renders the top navigation. active is the current path, used
// to mark the matching link.
func Navbar(active string) *VNode {
	return Header(Class("site-header"),
		Nav(Class("nav"), AriaLabel("Main"),
			A(Href("/"), Class("nav-brand"),
				Raw(icons.Icon("logo")),
				Span("Advisor"),
			),
			Ul(Class("nav-links"),
				Range(navLinks, func(l navLink, _ int) *VNode {
					cls := "nav-link"
					var current Attr
					if l.href == active {
						cls += " active"
						current = AriaCurrent("page")
					}
					return Li(
						A(Href(l.href), Class(cls), current,
							Raw(icons.Icon(l.icon)),
							Span(l.label),
						),
					)
				}),
			),
		),
	)
}
