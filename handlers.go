package advisor

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/marycampus/advisor/pkg/render"
	"github.com/marycampus/advisor/pkg/server"
)

const (
	advisorPrefix = "/_advisor/"
	livePath      = "/_advisor/live"
	uploadsPrefix = "/_advisor/uploads/"
	apiPrefix     = "/api/"

	// avatarUploadPath accepts the profile avatar as multipart form
	// data; everything else under /api/ speaks JSON.
	avatarUploadPath = "/api/profile/avatar"
)

// ServeHTTP dispatches a request: framework endpoints under
// /_advisor/, static files, the JSON API, and finally server-side
// document rendering for everything else.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !a.Booted() {
		http.Error(w, "service starting", http.StatusServiceUnavailable)
		return
	}

	path := r.URL.Path

	switch {
	case path == livePath:
		a.live.ServeHTTP(w, r)

	case strings.HasPrefix(path, uploadsPrefix):
		a.serveUpload(w, r)

	case strings.HasPrefix(path, advisorPrefix):
		a.serveClientAsset(w, r)

	case a.config.Static.Dir != "" && strings.HasPrefix(path, a.config.Static.Prefix):
		a.serveStatic(w, r)

	case path == avatarUploadPath && r.Method == http.MethodPost:
		a.serveAvatarUpload(w, r)

	case strings.HasPrefix(path, apiPrefix):
		a.serveAPI(w, r)

	case r.Method == http.MethodGet || r.Method == http.MethodHead:
		a.renderPage(w, r)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// =============================================================================
// Document rendering
// =============================================================================

// renderPage serves the full SSR document: create a session, mount
// the requested route into it, and render the resulting tree with the
// bootstrap payload the live client needs to take over.
func (a *App) renderPage(w http.ResponseWriter, r *http.Request) {
	sess, err := a.manager.Create(r)
	if err != nil {
		a.logger.Error("session create failed", "error", err)
		http.Error(w, "too many sessions", http.StatusServiceUnavailable)
		return
	}

	ctx := newSSRCtx(r, sess, a.logger.With("session_id", sess.ID))
	result, err := sess.Mount(ctx, r.URL.RequestURI())
	if err != nil {
		sess.Close()
		if errors.Is(err, server.ErrNoRoute) {
			http.NotFound(w, r)
			return
		}
		a.logger.Error("mount failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if url, code, ok := ctx.redirected(); ok {
		sess.Close()
		ctx.applyTo(w)
		http.Redirect(w, r, url, code)
		return
	}

	status := http.StatusOK
	switch {
	case result.NotFound:
		status = http.StatusNotFound
	case result.RouteFailed:
		status = http.StatusInternalServerError
	}
	status = ctx.statusCode(status)

	token := a.csrf.Generate()

	ctx.applyTo(w)
	http.SetCookie(w, a.csrf.Cookie(r, token))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}

	page := render.PageData{
		Body:         result.Tree,
		Title:        a.config.Title,
		SessionID:    sess.ID,
		CSRFToken:    token,
		ClientScript: a.clientPath,
	}
	if err := a.renderer().RenderPage(w, page); err != nil {
		a.logger.Error("render failed", "path", r.URL.Path, "error", err)
	}
}

// =============================================================================
// API
// =============================================================================

// serveAPI resolves an API handler from the route tree, runs the
// route's middleware chain around it, and writes the result as JSON.
func (a *App) serveAPI(w http.ResponseWriter, r *http.Request) {
	match, ok := a.router.Match(r.Method, r.URL.Path)
	if !ok || match.API == nil {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}

	ctx := newSSRCtx(r, nil, a.logger.With("api", match.Pattern))
	ctx.SetRouteInfo(match.Pattern, match.Params)

	var result any
	handler := func() error {
		v, err := match.API(ctx)
		result = v
		return err
	}
	if err := runMiddleware(ctx, match.Middleware, handler); err != nil {
		writeAPIError(w, a.logger, err)
		return
	}

	ctx.applyTo(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ctx.statusCode(http.StatusOK))
	if result == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		a.logger.Error("api response failed", "pattern", match.Pattern, "error", err)
	}
}

func runMiddleware(ctx server.Ctx, chain []server.Middleware, final func() error) error {
	next := final
	for i := len(chain) - 1; i >= 0; i-- {
		mw, inner := chain[i], next
		next = func() error { return mw.Handle(ctx, inner) }
	}
	return next()
}

func writeAPIError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		writeJSONError(w, httpErr.StatusCode(), httpErr.Message)
		return
	}
	logger.Error("api handler failed", "error", err)
	writeJSONError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// =============================================================================
// Uploads
// =============================================================================

// serveAvatarUpload gates the multipart upload handler behind CSRF:
// the client supplies the token it got at render time via header or
// form field, checked against the signed cookie.
func (a *App) serveAvatarUpload(w http.ResponseWriter, r *http.Request) {
	if a.uploadAccept == nil {
		writeJSONError(w, http.StatusNotFound, "uploads disabled")
		return
	}
	token := r.Header.Get("X-CSRF-Token")
	if token == "" {
		token = r.FormValue("csrf")
	}
	if !a.csrf.Validate(r, token) {
		writeJSONError(w, http.StatusForbidden, "invalid csrf token")
		return
	}
	a.uploadAccept.ServeHTTP(w, r)
}

func (a *App) serveUpload(w http.ResponseWriter, r *http.Request) {
	if a.uploadServe == nil || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	http.StripPrefix(uploadsPrefix, a.uploadServe).ServeHTTP(w, r)
}
