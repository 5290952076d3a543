package router

import (
	"fmt"
	"strings"

	"github.com/marycampus/advisor/pkg/routepath"
)

// node is one segment in the route tree. Static children are keyed by
// segment; each node holds at most one parameter child and at most one
// catch-all child.
type node struct {
	segment       string
	paramName     string
	isParam       bool
	isCatchAll    bool
	page          PageHandler
	lazy          *LazyCell
	api           map[string]APIHandler
	layout        LayoutHandler
	middleware    []Middleware
	pattern       string
	children      map[string]*node
	paramChild    *node
	catchAllChild *node
}

// child returns the child node for one pattern segment, creating it on
// first use. Two sibling parameters or catch-alls with different names
// claim the same slot and conflict.
func (n *node) child(seg, pattern string) (*node, error) {
	switch {
	case strings.HasPrefix(seg, ":"):
		name := seg[1:]
		if c := n.paramChild; c != nil {
			if c.paramName != name {
				return nil, fmt.Errorf("%w: parameters %q and %q under %q", ErrRouteConflict, ":"+c.paramName, seg, pattern)
			}
			return c, nil
		}
		n.paramChild = &node{segment: seg, isParam: true, paramName: name}
		return n.paramChild, nil
	case strings.HasPrefix(seg, "*"):
		name := seg[1:]
		if name == "" {
			name = "*"
		}
		if c := n.catchAllChild; c != nil {
			if c.paramName != name {
				return nil, fmt.Errorf("%w: catch-alls %q and %q under %q", ErrRouteConflict, c.segment, seg, pattern)
			}
			return c, nil
		}
		n.catchAllChild = &node{segment: seg, isCatchAll: true, paramName: name}
		return n.catchAllChild, nil
	default:
		if c, ok := n.children[seg]; ok {
			return c, nil
		}
		if n.children == nil {
			n.children = make(map[string]*node)
		}
		c := &node{segment: seg}
		n.children[seg] = c
		return c, nil
	}
}

func (n *node) setHandler(pattern string, page PageHandler, lazy Loader) error {
	if n.page != nil || n.lazy != nil {
		return fmt.Errorf("%w: duplicate route %q", ErrRouteConflict, pattern)
	}
	if page != nil {
		n.page = page
	} else {
		n.lazy = newLazyCell(lazy)
	}
	n.pattern = pattern
	return nil
}

func (n *node) setAPI(method, pattern string, h APIHandler) error {
	if n.api == nil {
		n.api = make(map[string]APIHandler)
	}
	if _, ok := n.api[method]; ok {
		return fmt.Errorf("%w: duplicate %s %q", ErrRouteConflict, method, pattern)
	}
	n.api[method] = h
	if n.pattern == "" {
		n.pattern = pattern
	}
	return nil
}

func (n *node) terminal() bool {
	return n.page != nil || n.lazy != nil || len(n.api) > 0
}

// collect appends this node's layout and middleware. Layout and
// middleware slices are passed by value down the tree, so entries
// appended on a branch that later backtracks never leak into the
// sibling that finally matches.
func (n *node) collect(layouts []LayoutHandler, mw []Middleware) ([]LayoutHandler, []Middleware) {
	if n.layout != nil {
		layouts = append(layouts, n.layout)
	}
	if len(n.middleware) > 0 {
		mw = append(mw, n.middleware...)
	}
	return layouts, mw
}

// match resolves segments against the subtree rooted at n. Static
// children win over the parameter child, which wins over the
// catch-all; when a deeper branch dead-ends the walk backtracks and
// tries the next alternative at this level. The catch-all consumes all
// remaining segments, including none.
//
// Segments are percent-decoded as they are captured. A segment whose
// decoding would introduce a slash cannot bind a single parameter and
// falls through to the catch-all, which accepts it.
func (n *node) match(segments []string, params map[string]string, layouts []LayoutHandler, mw []Middleware) (*node, []LayoutHandler, []Middleware, bool) {
	layouts, mw = n.collect(layouts, mw)

	if len(segments) == 0 {
		if n.terminal() {
			return n, layouts, mw, true
		}
		if c := n.catchAllChild; c != nil && c.terminal() {
			params[c.paramName] = ""
			cl, cm := c.collect(layouts, mw)
			return c, cl, cm, true
		}
		return nil, nil, nil, false
	}

	seg, rest := segments[0], segments[1:]
	dseg, derr := routepath.DecodeSegment(seg, false)

	lookup := seg
	if derr == nil {
		lookup = dseg
	}
	if child, ok := n.children[lookup]; ok {
		if m, l, w, ok := child.match(rest, params, layouts, mw); ok {
			return m, l, w, true
		}
	}
	if c := n.paramChild; c != nil && derr == nil {
		params[c.paramName] = dseg
		if m, l, w, ok := c.match(rest, params, layouts, mw); ok {
			return m, l, w, true
		}
		delete(params, c.paramName)
	}
	if c := n.catchAllChild; c != nil && c.terminal() {
		rem, err := routepath.DecodeSegment(strings.Join(segments, "/"), true)
		if err == nil {
			params[c.paramName] = rem
			cl, cm := c.collect(layouts, mw)
			return c, cl, cm, true
		}
	}
	return nil, nil, nil, false
}
