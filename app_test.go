package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marycampus/advisor/el"
	"github.com/marycampus/advisor/pkg/router"
	"github.com/marycampus/advisor/pkg/server"
	"github.com/marycampus/advisor/pkg/vdom"
)

func shellLayout(ctx server.Ctx, children server.Slot) *vdom.VNode {
	return el.Div(el.Class("shell"),
		el.Main(el.ID(DefaultMountID), children),
	)
}

func brokenLayout(ctx server.Ctx, children server.Slot) *vdom.VNode {
	return el.Div(el.Class("shell"), children)
}

func textPage(body string) server.PageHandler {
	return func(ctx server.Ctx, params map[string]string) vdom.Component {
		return vdom.Func(func() *vdom.VNode {
			return el.P(body)
		})
	}
}

func newTestApp(t *testing.T, layout server.LayoutHandler) *App {
	t.Helper()
	app, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { app.Shutdown(context.Background()) })

	err = app.Routes(router.Route{
		Path:   "/",
		Layout: layout,
		Children: []router.Route{
			{Index: true, Page: textPage("home-page")},
			{Path: "about", Page: textPage("about-page")},
		},
	})
	if err != nil {
		t.Fatalf("Routes: %v", err)
	}
	return app
}

func TestBootRequiresRoutes(t *testing.T) {
	app, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer app.Shutdown(context.Background())

	if err := app.Boot(); !errors.Is(err, ErrNoRoutes) {
		t.Fatalf("Boot with no routes = %v, want ErrNoRoutes", err)
	}
	if app.Booted() {
		t.Error("app reports booted after failed Boot")
	}
}

func TestBootVerifiesMountNode(t *testing.T) {
	app := newTestApp(t, brokenLayout)
	err := app.Boot()
	if !errors.Is(err, ErrMountPointMissing) {
		t.Fatalf("Boot = %v, want ErrMountPointMissing", err)
	}
	if app.Booted() {
		t.Error("app reports booted after failed mount verification")
	}

	// A failed boot must keep traffic out.
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status before boot = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestBootRunsOnce(t *testing.T) {
	app := newTestApp(t, shellLayout)
	if err := app.Boot(); err != nil {
		t.Fatalf("first Boot: %v", err)
	}
	if !app.Booted() {
		t.Fatal("app not booted after successful Boot")
	}
	if err := app.Boot(); !errors.Is(err, ErrAlreadyBooted) {
		t.Fatalf("second Boot = %v, want ErrAlreadyBooted", err)
	}
}

func TestRunRequiresBoot(t *testing.T) {
	app := newTestApp(t, shellLayout)
	if err := app.Run(context.Background(), ":0"); !errors.Is(err, ErrNotBooted) {
		t.Fatalf("Run before Boot = %v, want ErrNotBooted", err)
	}
}

func TestSSRServesDocument(t *testing.T) {
	app := newTestApp(t, shellLayout)
	if err := app.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		`id="` + DefaultMountID + `"`,
		"home-page",
		"window.__ADVISOR__",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("document missing %q", want)
		}
	}

	var csrfCookie bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == server.DefaultCSRFCookie && c.Value != "" {
			csrfCookie = true
		}
	}
	if !csrfCookie {
		t.Error("no csrf cookie on the SSR response")
	}

	// The document references the fingerprinted client bundle.
	if !strings.Contains(body, advisorPrefix) {
		t.Error("document does not reference the client bundle")
	}
}

func TestSSRUnmatchedPathIs404(t *testing.T) {
	app := newTestApp(t, shellLayout)
	if err := app.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAPIRoutes(t *testing.T) {
	app, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer app.Shutdown(context.Background())

	err = app.API(http.MethodGet, "/api/ping", func(ctx server.Ctx) (any, error) {
		return map[string]string{"pong": "yes"}, nil
	})
	if err != nil {
		t.Fatalf("API: %v", err)
	}
	err = app.API(http.MethodGet, "/api/broken", func(ctx server.Ctx) (any, error) {
		return nil, NewHTTPError(http.StatusTeapot, "no coffee", nil)
	})
	if err != nil {
		t.Fatalf("API: %v", err)
	}
	if err := app.Routes(router.Route{
		Path:   "/",
		Layout: shellLayout,
		Children: []router.Route{
			{Index: true, Page: textPage("home")},
		},
	}); err != nil {
		t.Fatalf("Routes: %v", err)
	}
	if err := app.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["pong"] != "yes" {
		t.Errorf("body = %v", body)
	}

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/broken", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("error status = %d, want 418", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown api status = %d, want 404", rec.Code)
	}
}

func TestClientBundleServed(t *testing.T) {
	app := newTestApp(t, shellLayout)
	if err := app.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, app.clientPath, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Errorf("fingerprinted bundle Cache-Control = %q", cc)
	}

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_advisor/advisor.js", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("bare bundle status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_advisor/other.js", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown asset status = %d, want 404", rec.Code)
	}
}

func TestAvatarUploadNeedsCSRF(t *testing.T) {
	app := newTestApp(t, shellLayout)
	if err := app.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	// No upload store configured: the endpoint is absent.
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, avatarUploadPath, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status without store = %d, want 404", rec.Code)
	}
}

func TestStaticTraversalBlocked(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "site.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	app, err := New(Config{Static: StaticConfig{Dir: dir}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer app.Shutdown(context.Background())
	if err := app.Routes(router.Route{
		Path:     "/",
		Layout:   shellLayout,
		Children: []router.Route{{Index: true, Page: textPage("home")}},
	}); err != nil {
		t.Fatalf("Routes: %v", err)
	}
	if err := app.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/site.css", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /static/site.css = %d, want 200", rec.Code)
	}

	for _, path := range []string{
		"/static/../go.mod",
		"/static/.env",
		"/static/sub/../../secret",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, rec.Code)
		}
	}
}
