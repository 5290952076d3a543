package shared

import (
	"time"

	. "github.com/marycampus/advisor/el"
)

// PageFooter renders the site footer.
func PageFooter() *VNode {
	return Footer(Class("site-footer"),
		P(Class("footer-note"),
			Textf("© %d Mary Campus Advising", time.Now().Year()),
		),
		P(Class("footer-links"),
			A(Href("/qa"), "Common questions"),
			Text(" · "),
			A(Href("/profile"), "Your profile"),
		),
	)
}
