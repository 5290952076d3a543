// Package el is the UI DSL for page and component code.
//
// It re-exports the element constructors, attribute helpers, event
// helpers, and tree utilities from
// github.com/marycampus/advisor/pkg/vdom so that page files can
// dot-import a single package and read as markup:
//
//	import (
//	    . "github.com/marycampus/advisor/el"
//	)
//
//	func view() *VNode {
//	    return Div(Class("card"),
//	        H2("Advising"),
//	        P("How can we help?"),
//	    )
//	}
package el
