// Package router matches request paths against a declarative route
// table. Routes nest, layouts compose from root to leaf, and a route
// may defer its handler to first use through a LazyCell. The table is
// built once at startup and frozen; matching after that point is
// read-only and safe for concurrent use.
//
// Precedence is structural, not declaration-ordered: an exact segment
// beats a parameter, and a parameter beats the catch-all. The tree
// backtracks, so a static branch that dead-ends still falls through to
// a parameterized or catch-all sibling.
package router

import (
	"fmt"
	"strings"
	"sync"
)

// Router holds the route tree and the fallback handlers around it.
type Router struct {
	mu        sync.RWMutex
	root      *node
	frozen    bool
	global    []Middleware
	notFound  PageHandler
	errorPage ErrorHandler
	routes    []RouteInfo
}

// New returns an empty, unfrozen router.
func New() *Router {
	return &Router{root: &node{segment: "/"}}
}

// Build registers the route table and freezes the router. Conflicts
// and malformed declarations are reported here, before anything is
// served. A router that failed to build must not be used.
func (r *Router) Build(routes ...Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	for _, rt := range routes {
		if err := rt.validate("/"); err != nil {
			return err
		}
	}
	for _, rt := range routes {
		if err := r.add(r.root, rt, "/"); err != nil {
			return err
		}
	}
	r.frozen = true
	return nil
}

func (r *Router) add(parent *node, rt Route, parentPattern string) error {
	n := parent
	pattern := parentPattern
	if !rt.Index {
		for _, seg := range splitPattern(rt.Path) {
			child, err := n.child(seg, pattern)
			if err != nil {
				return err
			}
			n = child
			pattern = joinPattern(pattern, seg)
		}
	}
	if rt.Layout != nil {
		if n.layout != nil {
			return fmt.Errorf("%w: two layouts at %q", ErrRouteConflict, pattern)
		}
		n.layout = rt.Layout
	}
	n.middleware = append(n.middleware, rt.Middleware...)
	if rt.Page != nil || rt.Lazy != nil {
		if err := n.setHandler(pattern, rt.Page, rt.Lazy); err != nil {
			return err
		}
		r.routes = append(r.routes, RouteInfo{Pattern: pattern, Lazy: rt.Lazy != nil})
	}
	for _, child := range rt.Children {
		if err := r.add(n, child, pattern); err != nil {
			return err
		}
	}
	return nil
}

// API mounts a JSON handler on the same tree as the pages. API routes
// are registered before Build freezes the table.
func (r *Router) API(method, path string, h APIHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	method = strings.ToUpper(method)
	n := r.root
	pattern := "/"
	for _, seg := range splitPattern(path) {
		child, err := n.child(seg, pattern)
		if err != nil {
			return err
		}
		n = child
		pattern = joinPattern(pattern, seg)
	}
	if err := n.setAPI(method, pattern, h); err != nil {
		return err
	}
	r.routes = append(r.routes, RouteInfo{Method: method, Pattern: pattern})
	return nil
}

// Use appends middleware that runs for every matched route, ahead of
// any route-level middleware.
func (r *Router) Use(mw ...Middleware) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	r.global = append(r.global, mw...)
	return nil
}

// SetNotFound installs the fallback page for paths no route matches.
// A catch-all route shadows it for every path under its parent.
func (r *Router) SetNotFound(h PageHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	r.notFound = h
	return nil
}

// SetErrorPage installs the page rendered when a handler or a lazy
// load fails.
func (r *Router) SetErrorPage(h ErrorHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	r.errorPage = h
	return nil
}

// NotFound returns the installed fallback page, or nil.
func (r *Router) NotFound() PageHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notFound
}

// ErrorPage returns the installed error page, or nil.
func (r *Router) ErrorPage() ErrorHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.errorPage
}

// Frozen reports whether Build has run.
func (r *Router) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Routes lists the registered routes in registration order.
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RouteInfo, len(r.routes))
	copy(out, r.routes)
	return out
}

// Match resolves a canonical request path. The method selects between
// an API handler and a page when both are mounted on one node. Params
// come back percent-decoded; a parameter that would smuggle a slash
// through an encoded escape does not match.
func (r *Router) Match(method, path string) (*MatchResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	params := make(map[string]string)
	global := append([]Middleware(nil), r.global...)
	n, layouts, mw, ok := r.root.match(splitPattern(path), params, nil, global)
	if !ok {
		return nil, false
	}

	res := &MatchResult{
		Layouts:    layouts,
		Middleware: mw,
		Params:     params,
		Pattern:    n.pattern,
	}
	if h, ok := n.api[strings.ToUpper(method)]; ok {
		res.API = h
	} else if n.page == nil && n.lazy == nil {
		return nil, false
	} else {
		res.Page = n.page
		res.Lazy = n.lazy
	}
	return res, true
}
