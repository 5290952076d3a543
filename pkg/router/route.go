package router

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFrozen is returned when routes are added after Build.
	ErrFrozen = errors.New("router: route table is frozen")

	// ErrRouteConflict is returned when two routes claim the same match
	// space, such as duplicate static siblings or a second catch-all.
	ErrRouteConflict = errors.New("router: conflicting routes")

	// ErrBadRoute is returned for a malformed route declaration.
	ErrBadRoute = errors.New("router: invalid route")
)

// Route declares one entry in the route table. Routes nest: Children
// match path segments under the parent's, and a parent's Layout wraps
// every descendant page.
//
// A route is one of three things. An index route (Index set, Path
// empty) renders at the parent's own path. A group route (Children
// set, no handler) only contributes its Layout and Middleware. A leaf
// route carries exactly one of Page or Lazy.
type Route struct {
	// Path is the pattern relative to the parent: one or more static
	// segments ("qa", "settings/profile"), a parameter (":id"), or a
	// catch-all ("*" or "*rest"). The catch-all matches any remaining
	// segments and must be the final segment. The root route uses "/".
	Path string

	// Index marks the route rendered at the parent's own path.
	Index bool

	// Page handles the route eagerly.
	Page PageHandler

	// Lazy defers the handler to the first navigation that needs it.
	// The loader runs at most once; its outcome is retained.
	Lazy Loader

	// Layout wraps this route's page and every descendant page.
	Layout LayoutHandler

	// Middleware runs for this route and every descendant, in order,
	// after the parent's chain.
	Middleware []Middleware

	// Children nest under Path.
	Children []Route
}

// RouteInfo describes one registered route for listings and logs.
// Method is empty for page routes.
type RouteInfo struct {
	Method  string
	Pattern string
	Lazy    bool
}

func (r Route) validate(pattern string) error {
	if r.Index {
		if r.Path != "" {
			return fmt.Errorf("%w: index route under %q must not set Path", ErrBadRoute, pattern)
		}
		if len(r.Children) > 0 {
			return fmt.Errorf("%w: index route under %q must not have children", ErrBadRoute, pattern)
		}
		if r.Layout != nil {
			return fmt.Errorf("%w: index route under %q must not declare a layout", ErrBadRoute, pattern)
		}
		if err := r.validateHandler(pattern, true); err != nil {
			return err
		}
		return nil
	}

	if r.Path == "" {
		return fmt.Errorf("%w: route under %q has empty path", ErrBadRoute, pattern)
	}
	segs := splitPattern(r.Path)
	for i, seg := range segs {
		switch {
		case seg == "":
			return fmt.Errorf("%w: route %q has an empty segment", ErrBadRoute, joinPattern(pattern, r.Path))
		case strings.HasPrefix(seg, ":"):
			if len(seg) == 1 {
				return fmt.Errorf("%w: route %q has an unnamed parameter", ErrBadRoute, joinPattern(pattern, r.Path))
			}
		case strings.HasPrefix(seg, "*"):
			if i != len(segs)-1 {
				return fmt.Errorf("%w: catch-all must be the final segment in %q", ErrBadRoute, joinPattern(pattern, r.Path))
			}
			if len(r.Children) > 0 {
				return fmt.Errorf("%w: catch-all route %q must not have children", ErrBadRoute, joinPattern(pattern, r.Path))
			}
		}
	}

	full := joinPattern(pattern, r.Path)
	if len(r.Children) > 0 {
		if r.Page != nil || r.Lazy != nil {
			return fmt.Errorf("%w: route %q has children; move its handler to an Index child", ErrBadRoute, full)
		}
		return r.validateChildren(full)
	}
	return r.validateHandler(full, false)
}

func (r Route) validateHandler(pattern string, index bool) error {
	at := pattern
	if index {
		at = "index under " + pattern
	}
	if r.Page != nil && r.Lazy != nil {
		return fmt.Errorf("%w: %s sets both Page and Lazy", ErrBadRoute, at)
	}
	if r.Page == nil && r.Lazy == nil {
		return fmt.Errorf("%w: %s has no handler", ErrBadRoute, at)
	}
	return nil
}

// validateChildren enforces sibling rules: at most one index, at most
// one parameter name, and at most one catch-all per group. Declaration
// order never matters; a catch-all declared first still loses to its
// siblings. Duplicate handlers on the same path are caught at insert,
// where multi-segment paths have already merged.
func (r Route) validateChildren(pattern string) error {
	var (
		index     bool
		paramName string
		catchAll  bool
	)
	for _, child := range r.Children {
		if err := child.validate(pattern); err != nil {
			return err
		}
		if child.Index {
			if index {
				return fmt.Errorf("%w: two index routes under %q", ErrRouteConflict, pattern)
			}
			index = true
			continue
		}
		seg := splitPattern(child.Path)[0]
		switch {
		case strings.HasPrefix(seg, ":"):
			name := seg[1:]
			if paramName != "" && paramName != name {
				return fmt.Errorf("%w: parameters %q and %q under %q", ErrRouteConflict, ":"+paramName, seg, pattern)
			}
			paramName = name
		case strings.HasPrefix(seg, "*"):
			if catchAll {
				return fmt.Errorf("%w: two catch-all routes under %q", ErrRouteConflict, pattern)
			}
			catchAll = true
		}
	}
	return nil
}

func splitPattern(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func joinPattern(parent, path string) string {
	segs := splitPattern(path)
	if len(segs) == 0 {
		return parent
	}
	if parent == "/" {
		return "/" + strings.Join(segs, "/")
	}
	return parent + "/" + strings.Join(segs, "/")
}
