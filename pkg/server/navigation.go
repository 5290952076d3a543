package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/marycampus/advisor/pkg/protocol"
	"github.com/marycampus/advisor/pkg/routepath"
	"github.com/marycampus/advisor/pkg/vdom"
)

// navMode selects how a route change lands in the browser history.
type navMode int

const (
	navPush    navMode = iota // push a new entry
	navReplace                // replace the current entry
	navNone                   // history already moved (popstate)
)

// MountResult reports the outcome of a session's first render.
type MountResult struct {
	Tree        *vdom.VNode
	Pattern     string
	Path        string // canonical path, query included
	NotFound    bool
	RouteFailed bool
	Lazy        bool
}

// routeInfoSetter receives the matched pattern and params once
// routing resolves, before any page code runs against the context.
type routeInfoSetter interface {
	SetRouteInfo(pattern string, params map[string]string)
}

// routeOutcome is a resolved, instantiated route.
type routeOutcome struct {
	page     vdom.Component
	pattern  string
	params   map[string]string
	layouts  []LayoutHandler
	notFound bool
	failed   bool
	lazy     bool
	err      error
}

// Mount resolves rawPath and renders the session's first tree. It
// runs on the creating request's goroutine, before any connection
// attaches; ctx is that request's context and receives the matched
// route info plus any response shaping the page performs.
func (s *Session) Mount(ctx Ctx, rawPath string) (res *MountResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = NewHandlerError(s.ID, "", "", r, debug.Stack())
		}
	}()

	loc, err := routepath.Canonicalize(rawPath)
	if err != nil {
		return nil, NewSessionError(s.ID, "mount", err)
	}
	out, err := s.resolveRoute(ctx, loc)
	if err != nil {
		return nil, err
	}
	s.setRoute(loc, out)
	s.installTree(s.renderOutcome(ctx, out))
	s.touch()

	return &MountResult{
		Tree:        s.tree,
		Pattern:     out.pattern,
		Path:        s.CurrentPath(),
		NotFound:    out.notFound,
		RouteFailed: out.failed,
		Lazy:        out.lazy,
	}, nil
}

// resolveRoute matches loc against the router and instantiates the
// page. Resolution failures become the error page rather than an
// error: the route is still mounted, inside its layouts, showing what
// went wrong.
func (s *Session) resolveRoute(ctx Ctx, loc routepath.Result) (routeOutcome, error) {
	if s.router == nil {
		return routeOutcome{}, ErrNoRoute
	}
	match, ok := s.router.Match(http.MethodGet, loc.Path)
	if !ok {
		nf := s.router.NotFound()
		if nf == nil {
			return routeOutcome{}, ErrNoRoute
		}
		// The router-level fallback renders bare, outside any layout.
		// Apps that want the shell register a wildcard route instead.
		return routeOutcome{page: nf(ctx, nil), notFound: true}, nil
	}

	out := routeOutcome{
		pattern: match.GetPattern(),
		params:  match.GetParams(),
		layouts: match.GetLayouts(),
		lazy:    match.IsLazy(),
	}
	if setter, ok := ctx.(routeInfoSetter); ok {
		setter.SetRouteInfo(out.pattern, out.params)
	}

	page, err := s.buildPage(ctx, match, out.params)
	if err != nil {
		s.logger.Error("route resolution failed",
			"pattern", out.pattern, "error", err)
		out.failed = true
		out.err = err
		out.page = s.errorComponent(ctx, err)
		return out, nil
	}
	out.page = page
	return out, nil
}

// buildPage runs the route's middleware chain around the resolver and
// instantiates the page component. A panic anywhere inside surfaces
// as an error.
func (s *Session) buildPage(ctx Ctx, match RouteMatch, params map[string]string) (comp vdom.Component, err error) {
	defer func() {
		if r := recover(); r != nil {
			comp = nil
			err = NewHandlerError(s.ID, "", "resolve", r, debug.Stack())
		}
	}()
	var page PageHandler
	err = runMiddleware(ctx, match.GetMiddleware(), func() error {
		var rerr error
		page, rerr = match.Resolve(ctx.StdContext())
		return rerr
	})
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, fmt.Errorf("server: route %s resolved to no page", match.GetPattern())
	}
	return page(ctx, params), nil
}

func (s *Session) errorComponent(ctx Ctx, cause error) vdom.Component {
	if s.router != nil {
		if eh := s.router.ErrorPage(); eh != nil {
			return eh(ctx, cause)
		}
	}
	return defaultErrorPage{}
}

type defaultErrorPage struct{}

func (defaultErrorPage) Render() *vdom.VNode {
	return vdom.Element("div", vdom.Class("route-error"),
		vdom.Text("Something went wrong."))
}

func (s *Session) setRoute(loc routepath.Result, out routeOutcome) {
	s.routeMu.Lock()
	s.route = routeState{
		path:     loc.Path,
		query:    loc.Query,
		pattern:  out.pattern,
		params:   out.params,
		page:     out.page,
		layouts:  out.layouts,
		notFound: out.notFound,
		failed:   out.failed,
	}
	s.routeMu.Unlock()
}

// renderOutcome renders the page and wraps it in its layouts, applied
// innermost first so the root layout ends up outermost.
func (s *Session) renderOutcome(ctx Ctx, out routeOutcome) *vdom.VNode {
	if out.page == nil {
		return vdom.Element("div")
	}
	return applyLayouts(ctx, out.layouts, vdom.Materialize(out.page.Render()))
}

func applyLayouts(ctx Ctx, layouts []LayoutHandler, node *vdom.VNode) *vdom.VNode {
	for i := len(layouts) - 1; i >= 0; i-- {
		node = vdom.Materialize(layouts[i](ctx, node))
	}
	return node
}

// installTree swaps the rendered tree in and re-indexes handlers. The
// diff runs before HID assignment so retained nodes keep their
// identity; new nodes need HIDs before encoding because insert and
// replace payloads alias the new tree's nodes.
func (s *Session) installTree(next *vdom.VNode) []vdom.Patch {
	var patches []vdom.Patch
	if s.tree != nil {
		patches = vdom.Diff(s.tree, next)
	}
	vdom.AssignHIDs(next, s.hidGen)
	s.tree = next
	s.rebuildHandlers()
	return patches
}

// rebuildHandlers re-indexes the tree's handlers by HID. Wire events
// carry bare event names, so the "on" prefix comes off here.
func (s *Session) rebuildHandlers() {
	handlers := make(map[string]Handler)
	for hid, props := range vdom.CollectHandlers(s.tree) {
		for prop, fn := range props {
			h := wrapHandler(fn)
			if h == nil {
				s.logger.Warn("unsupported handler type", "hid", hid, "prop", prop)
				continue
			}
			handlers[handlerKey(hid, strings.TrimPrefix(prop, "on"))] = h
		}
	}
	s.handlers = handlers
}

// performNavigation resolves target and re-renders, sending the
// history instruction and the DOM patches in one frame. A path that
// canonicalization rewrote lands as a replace so the address bar
// never keeps the raw form.
func (s *Session) performNavigation(target string, mode navMode) error {
	loc, err := routepath.Canonicalize(target)
	if err != nil {
		return NewSessionError(s.ID, "navigate", err)
	}
	if loc.Changed && mode == navPush {
		mode = navReplace
	}

	ctx := s.liveContext(loc.Path, loc.Query)
	out, err := s.resolveRoute(ctx, loc)
	if err != nil {
		return err
	}
	s.setRoute(loc, out)
	patches := s.installTree(s.renderOutcome(ctx, out))

	if mode != navNone {
		url := loc.Path
		if loc.Query != "" {
			url += "?" + loc.Query
		}
		key := "push"
		if mode == navReplace {
			key = "replace"
		}
		nav := vdom.Patch{Op: vdom.PatchNavigate, Value: url, Key: key}
		patches = append([]vdom.Patch{nav}, patches...)
	}
	s.sendPatches(patches)
	s.touch()
	s.logger.Debug("navigated", "path", loc.Path, "pattern", out.pattern)
	return nil
}

// rerender diffs the mounted route against a fresh render. Handlers
// mutate session state; this is where those mutations become patches.
func (s *Session) rerender() {
	s.routeMu.RLock()
	page, layouts := s.route.page, s.route.layouts
	s.routeMu.RUnlock()
	if page == nil {
		return
	}
	ctx := s.renderContext()
	next := applyLayouts(ctx, layouts, vdom.Materialize(page.Render()))
	s.sendPatches(s.installTree(next))
}

// showErrorPage swaps the mounted page for the error page, keeping
// the layouts so the shell stays interactive. A failure rendering the
// error page itself is logged and dropped.
func (s *Session) showErrorPage(cause error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("error page render panicked", "panic", fmt.Sprint(r))
		}
	}()
	ctx := s.renderContext()
	comp := s.errorComponent(ctx, cause)
	if comp == nil {
		return
	}
	s.routeMu.Lock()
	s.route.page = comp
	s.route.failed = true
	s.routeMu.Unlock()
	s.rerender()
}

// =============================================================================
// Wire output
// =============================================================================

// sendPatches assigns the next sequence, records the frame for
// replay, and writes it if a client is attached. Detached sessions
// still record: the client recovers the gap from history on resume.
func (s *Session) sendPatches(patches []vdom.Patch) {
	if len(patches) == 0 {
		return
	}
	seq := s.sendSeq.Add(1)
	pf := &protocol.PatchesFrame{Seq: seq, Patches: protocol.PatchesToWire(patches)}
	frame := protocol.NewFrame(protocol.FramePatches, protocol.EncodePatches(pf)).Encode()
	s.history.Add(seq, frame)
	s.patchesSent.Add(uint64(len(patches)))
	if err := s.writeRaw(frame); err != nil {
		s.logger.Debug("patch write failed", "seq", seq, "error", err)
	}
}

// sendResyncFull replaces the client's whole document subtree. The
// empty target HID addresses the session root.
func (s *Session) sendResyncFull() {
	if s.tree == nil {
		return
	}
	s.sendPatches([]vdom.Patch{{Op: vdom.PatchReplaceNode, Node: s.tree}})
}

// recoverClient brings a resumed client from lastSeq to the current
// sequence, replaying recorded frames when the gap is still in
// history and falling back to a full resync when it is not.
func (s *Session) recoverClient(lastSeq uint64) {
	frames, ok := s.history.FramesSince(lastSeq)
	if !ok {
		s.logger.Debug("gap beyond patch history",
			"last_seq", lastSeq, "send_seq", s.sendSeq.Load())
		s.sendResyncFull()
		return
	}
	for _, frame := range frames {
		if err := s.writeRaw(frame); err != nil {
			return
		}
	}
}

// sendError reports a failure to the client. Fatal frames precede a
// close.
func (s *Session) sendError(ef *protocol.ErrorFrame) {
	payload, err := protocol.EncodeError(ef)
	if err != nil {
		return
	}
	s.writeRaw(protocol.NewFrame(protocol.FrameError, payload).Encode())
}

func errNavigation(err error) *protocol.ErrorFrame {
	return &protocol.ErrorFrame{Code: protocol.ErrCodeNavigation, Message: err.Error()}
}

// writeRaw writes pre-encoded frame bytes to the connection. Writing
// while detached is not an error; the client catches up on resume. A
// failed write detaches the connection.
func (s *Session) writeRaw(frame []byte) error {
	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.mu.Unlock()
		return nil
	}
	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	err := conn.WriteMessage(websocket.BinaryMessage, frame)
	s.mu.Unlock()
	if err != nil {
		s.detachConn(conn)
		return NewSessionError(s.ID, "write", err)
	}
	s.bytesSent.Add(uint64(len(frame)))
	return nil
}
