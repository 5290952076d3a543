package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/marycampus/advisor/pkg/routepath"
)

// RenderMode says which transport a context is rendering for.
type RenderMode uint8

const (
	// ModeSSR renders a complete document for a plain HTTP request.
	ModeSSR RenderMode = iota

	// ModeLive renders inside a connected session; changes leave as
	// patch frames.
	ModeLive
)

// String returns the mode name.
func (m RenderMode) String() string {
	switch m {
	case ModeSSR:
		return "ssr"
	case ModeLive:
		return "live"
	}
	return "unknown"
}

// Ctx is the view of a session handed to page handlers, layouts,
// middleware, API handlers, and event handlers.
//
// The live implementation is created by the session per render or
// event. The SSR implementation lives with the HTTP handlers that
// serve documents, where it additionally records response headers.
type Ctx interface {
	// Request returns the HTTP request behind this render. In live
	// mode it is a synthetic GET for the current route.
	Request() *http.Request
	Path() string
	Method() string
	Query() url.Values
	QueryParam(name string) string

	// Param returns a decoded route parameter; Pattern the matched
	// route pattern.
	Param(name string) string
	Params() map[string]string
	Pattern() string

	Header(name string) string
	Cookie(name string) (*http.Cookie, error)

	// Response shaping. Effective during SSR only; a live render has
	// no HTTP response to shape.
	Status(code int)
	SetHeader(name, value string)
	SetCookie(cookie *http.Cookie)

	// Session returns the owning session.
	Session() *Session
	Logger() *slog.Logger
	Mode() RenderMode

	// SetValue and Value read and write session-scoped data. Values
	// survive navigation and, when JSON-serializable, session resume.
	SetValue(key string, value any)
	Value(key string) any

	// Navigate schedules a route change. Live mode applies it after
	// the current handler returns; SSR mode turns it into a redirect.
	// Absolute URLs are rejected.
	Navigate(path string, opts ...NavigateOption) error

	// Redirect sends the client to url. Live mode falls back to
	// Navigate, so external URLs work only during SSR.
	Redirect(url string, code int) error

	// Emit delivers data to listeners registered with Session.On.
	Emit(name string, data any)

	// Dispatch runs fn on the session's event loop. It is the only
	// safe way to touch session state from another goroutine.
	Dispatch(fn func())

	// StdContext returns the context bounding this render or event.
	StdContext() context.Context
}

// NavigateOption adjusts a scheduled navigation.
type NavigateOption func(*pendingNav)

// WithReplace makes the navigation replace the current history entry
// instead of pushing a new one.
func WithReplace() NavigateOption {
	return func(n *pendingNav) { n.mode = navReplace }
}

// pendingNav is a navigation requested by a handler, applied after
// the handler returns.
type pendingNav struct {
	path string
	mode navMode
}

// liveCtx implements Ctx for renders and events inside a session.
type liveCtx struct {
	session *Session
	request *http.Request
	params  map[string]string
	pattern string
	logger  *slog.Logger
	stdctx  context.Context
}

func (c *liveCtx) Request() *http.Request { return c.request }

func (c *liveCtx) Path() string {
	if c.request != nil && c.request.URL != nil {
		return c.request.URL.Path
	}
	return "/"
}

func (c *liveCtx) Method() string {
	if c.request != nil {
		return c.request.Method
	}
	return http.MethodGet
}

func (c *liveCtx) Query() url.Values {
	if c.request != nil && c.request.URL != nil {
		return c.request.URL.Query()
	}
	return url.Values{}
}

func (c *liveCtx) QueryParam(name string) string { return c.Query().Get(name) }

func (c *liveCtx) Param(name string) string { return c.params[name] }

// SetRouteInfo installs the matched pattern and params. Routing calls
// it before any page code sees the context.
func (c *liveCtx) SetRouteInfo(pattern string, params map[string]string) {
	c.pattern = pattern
	c.params = params
}

func (c *liveCtx) Params() map[string]string {
	out := make(map[string]string, len(c.params))
	for k, v := range c.params {
		out[k] = v
	}
	return out
}

func (c *liveCtx) Pattern() string { return c.pattern }

func (c *liveCtx) Header(name string) string {
	if c.request != nil {
		return c.request.Header.Get(name)
	}
	return ""
}

func (c *liveCtx) Cookie(name string) (*http.Cookie, error) {
	if c.request != nil {
		return c.request.Cookie(name)
	}
	return nil, http.ErrNoCookie
}

// Live renders have no HTTP response; shaping calls are dropped.
func (c *liveCtx) Status(code int)              {}
func (c *liveCtx) SetHeader(name, value string) {}
func (c *liveCtx) SetCookie(cookie *http.Cookie) {
}

func (c *liveCtx) Session() *Session { return c.session }

func (c *liveCtx) Logger() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

func (c *liveCtx) Mode() RenderMode { return ModeLive }

func (c *liveCtx) SetValue(key string, value any) {
	if c.session != nil {
		c.session.Set(key, value)
	}
}

func (c *liveCtx) Value(key string) any {
	if c.session == nil {
		return nil
	}
	return c.session.Get(key)
}

func (c *liveCtx) Navigate(path string, opts ...NavigateOption) error {
	target, err := routepath.ValidateNavTarget(path)
	if err != nil {
		return err
	}
	nav := &pendingNav{path: target, mode: navPush}
	for _, opt := range opts {
		opt(nav)
	}
	if c.session == nil {
		return ErrSessionClosed
	}
	c.session.scheduleNavigation(nav)
	return nil
}

func (c *liveCtx) Redirect(url string, code int) error {
	return c.Navigate(url)
}

func (c *liveCtx) Emit(name string, data any) {
	if c.session != nil {
		c.session.Emit(name, data)
	}
}

func (c *liveCtx) Dispatch(fn func()) {
	if c.session != nil {
		c.session.Dispatch(fn)
	}
}

func (c *liveCtx) StdContext() context.Context {
	if c.stdctx != nil {
		return c.stdctx
	}
	return context.Background()
}

// TestCtxOption configures NewTestContext.
type TestCtxOption func(*liveCtx)

// WithTestRequest sets the request the test context reports.
func WithTestRequest(r *http.Request) TestCtxOption {
	return func(c *liveCtx) { c.request = r }
}

// WithTestParams sets the route parameters.
func WithTestParams(params map[string]string) TestCtxOption {
	return func(c *liveCtx) { c.params = params }
}

// WithTestPattern sets the matched route pattern.
func WithTestPattern(pattern string) TestCtxOption {
	return func(c *liveCtx) { c.pattern = pattern }
}

// WithTestSession binds the context to a session.
func WithTestSession(s *Session) TestCtxOption {
	return func(c *liveCtx) { c.session = s }
}

// NewTestContext returns a Ctx for tests. It behaves like a live
// context over a mock session: SetValue and Value work, Navigate is
// recorded on the session, Dispatch runs inline when the session's
// loop is not running.
func NewTestContext(path string, opts ...TestCtxOption) Ctx {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	c := &liveCtx{
		session: NewMockSession(),
		request: req,
		params:  map[string]string{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		stdctx:  context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
