package advisor

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/marycampus/advisor/pkg/routepath"
	"github.com/marycampus/advisor/pkg/server"
)

// ssrCtx implements server.Ctx for plain HTTP document requests.
// Unlike a live context it has a real HTTP response to shape, so
// Status, SetHeader, and SetCookie are staged here and flushed with
// applyTo just before the document is written. Navigate and Redirect
// become HTTP redirects.
type ssrCtx struct {
	request *http.Request
	session *server.Session
	logger  *slog.Logger

	params  map[string]string
	pattern string

	status  int
	headers http.Header
	cookies []*http.Cookie

	redirectURL  string
	redirectCode int
}

func newSSRCtx(r *http.Request, sess *server.Session, logger *slog.Logger) *ssrCtx {
	return &ssrCtx{
		request: r,
		session: sess,
		logger:  logger,
		params:  map[string]string{},
		headers: http.Header{},
	}
}

func (c *ssrCtx) Request() *http.Request { return c.request }

func (c *ssrCtx) Path() string {
	if c.request.URL != nil {
		return c.request.URL.Path
	}
	return "/"
}

func (c *ssrCtx) Method() string { return c.request.Method }

func (c *ssrCtx) Query() url.Values {
	if c.request.URL != nil {
		return c.request.URL.Query()
	}
	return url.Values{}
}

func (c *ssrCtx) QueryParam(name string) string { return c.Query().Get(name) }

func (c *ssrCtx) Param(name string) string { return c.params[name] }

// SetRouteInfo installs the matched pattern and params; routing calls
// it during mount, before page code runs.
func (c *ssrCtx) SetRouteInfo(pattern string, params map[string]string) {
	c.pattern = pattern
	c.params = params
}

func (c *ssrCtx) Params() map[string]string {
	out := make(map[string]string, len(c.params))
	for k, v := range c.params {
		out[k] = v
	}
	return out
}

func (c *ssrCtx) Pattern() string { return c.pattern }

func (c *ssrCtx) Header(name string) string { return c.request.Header.Get(name) }

func (c *ssrCtx) Cookie(name string) (*http.Cookie, error) { return c.request.Cookie(name) }

func (c *ssrCtx) Status(code int) { c.status = code }

func (c *ssrCtx) SetHeader(name, value string) { c.headers.Set(name, value) }

func (c *ssrCtx) SetCookie(cookie *http.Cookie) { c.cookies = append(c.cookies, cookie) }

func (c *ssrCtx) Session() *server.Session { return c.session }

func (c *ssrCtx) Logger() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

func (c *ssrCtx) Mode() server.RenderMode { return server.ModeSSR }

func (c *ssrCtx) SetValue(key string, value any) {
	if c.session != nil {
		c.session.Set(key, value)
	}
}

func (c *ssrCtx) Value(key string) any {
	if c.session == nil {
		return nil
	}
	return c.session.Get(key)
}

// Navigate during SSR becomes a 303 redirect to the target path.
func (c *ssrCtx) Navigate(path string, opts ...server.NavigateOption) error {
	target, err := routepath.ValidateNavTarget(path)
	if err != nil {
		return err
	}
	c.redirectURL = target
	c.redirectCode = http.StatusSeeOther
	return nil
}

func (c *ssrCtx) Redirect(url string, code int) error {
	if code < 300 || code > 399 {
		code = http.StatusFound
	}
	c.redirectURL = url
	c.redirectCode = code
	return nil
}

func (c *ssrCtx) Emit(name string, data any) {
	if c.session != nil {
		c.session.Emit(name, data)
	}
}

func (c *ssrCtx) Dispatch(fn func()) {
	if c.session != nil {
		c.session.Dispatch(fn)
		return
	}
	fn()
}

func (c *ssrCtx) StdContext() context.Context { return c.request.Context() }

// redirected reports whether a handler asked for a redirect, and to
// where.
func (c *ssrCtx) redirected() (string, int, bool) {
	return c.redirectURL, c.redirectCode, c.redirectURL != ""
}

// applyTo flushes staged headers and cookies to w. It does not write
// the status line; the caller does that once the body is ready.
func (c *ssrCtx) applyTo(w http.ResponseWriter) {
	for name, values := range c.headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	for _, cookie := range c.cookies {
		http.SetCookie(w, cookie)
	}
}

// statusCode returns the staged status, or fallback when none was set.
func (c *ssrCtx) statusCode(fallback int) int {
	if c.status != 0 {
		return c.status
	}
	return fallback
}
