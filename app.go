package advisor

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	clientdist "github.com/marycampus/advisor/client/dist"
	"github.com/marycampus/advisor/internal/icons"
	"github.com/marycampus/advisor/pkg/assets"
	"github.com/marycampus/advisor/pkg/render"
	"github.com/marycampus/advisor/pkg/router"
	"github.com/marycampus/advisor/pkg/server"
	"github.com/marycampus/advisor/pkg/upload"
	"github.com/marycampus/advisor/pkg/vdom"
)

// App is the assembled application: route table, session manager,
// live transport, SSR serving, and the startup contract around them.
// It is an http.Handler after Boot.
type App struct {
	config  Config
	logger  *slog.Logger
	router  *router.Router
	manager *server.Manager
	live    *server.LiveHandler
	csrf    *server.CSRFGuard

	manifest   *assets.Manifest
	clientPath string

	uploadAccept http.Handler
	uploadServe  http.Handler

	mu     sync.Mutex
	booted bool
}

// New validates cfg and wires the application. Routes are registered
// afterwards; Boot runs the startup sequence.
func New(cfg Config) (*App, error) {
	cfg.applyDefaults()

	secret := cfg.CSRFSecret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("advisor: generate csrf secret: %w", err)
		}
	}

	r := router.New()
	manager := server.NewManager(server.Options{
		Router:       router.Adapter{Router: r},
		Session:      cfg.Session.Tuning,
		Store:        cfg.SnapshotStore,
		ResumeWindow: cfg.Session.ResumeWindow,
		IdleTimeout:  cfg.Session.IdleTimeout,
		MaxSessions:  cfg.Session.MaxSessions,
		Logger:       cfg.Logger,
	})

	csrf := server.NewCSRFGuard(secret, server.DefaultCSRFCookie)

	manifest := assets.NewManifest()
	manifest.Set(clientdist.Name, assets.Fingerprint(clientdist.Name, clientdist.AdvisorJS))

	app := &App{
		config:     cfg,
		logger:     cfg.Logger.With("component", "app"),
		router:     r,
		manager:    manager,
		live:       server.NewLiveHandler(manager, csrf, cfg.Logger),
		csrf:       csrf,
		manifest:   manifest,
		clientPath: advisorPrefix + manifest.Resolve(clientdist.Name),
	}

	if cfg.Uploads.Store != nil {
		app.uploadAccept = upload.HandlerWithConfig(cfg.Uploads.Store, &upload.Config{
			MaxFileSize:  cfg.Uploads.MaxBytes,
			AllowedTypes: cfg.Uploads.AllowedTypes,
			OnSaved:      app.notifyUpload,
			Logger:       cfg.Logger,
		})
		app.uploadServe = upload.ServeFile(cfg.Uploads.Store)
	}

	return app, nil
}

// notifyUpload bridges a completed avatar upload into the uploading
// session. The client identifies itself with the X-Advisor-Session
// header; the saved file lands in session state and the page re-renders.
func (a *App) notifyUpload(r *http.Request, f *upload.File) {
	id := r.Header.Get("X-Advisor-Session")
	if id == "" {
		id = r.FormValue("session")
	}
	if id == "" {
		return
	}
	sess, ok := a.manager.Get(id)
	if !ok {
		return
	}
	sess.Dispatch(func() {
		sess.Set(AvatarSessionKey, avatarPath(f))
		sess.Emit("avatar:saved", f)
	})
}

// AvatarSessionKey is where a completed avatar upload lands in
// session state. Pages read it to show the current avatar.
const AvatarSessionKey = "advisor.profile.avatar"

func avatarPath(f *upload.File) string {
	if f.URL != "" {
		return f.URL
	}
	return uploadsPrefix + f.ID
}

// =============================================================================
// Registration
// =============================================================================

// Routes registers the route table and freezes it. It is called once;
// conflicts and malformed declarations surface here.
func (a *App) Routes(table ...Route) error {
	return a.router.Build(table...)
}

// API mounts a JSON handler on the route tree.
func (a *App) API(method, path string, h APIHandler) error {
	return a.router.API(method, path, h)
}

// Use appends middleware that runs for every matched route.
func (a *App) Use(mw ...Middleware) error {
	return a.router.Use(mw...)
}

// SetNotFound installs the fallback page for paths no route matches.
func (a *App) SetNotFound(h PageHandler) error {
	return a.router.SetNotFound(h)
}

// SetErrorPage installs the page rendered when a route fails.
func (a *App) SetErrorPage(h ErrorHandler) error {
	return a.router.SetErrorPage(h)
}

// =============================================================================
// Boot
// =============================================================================

// Boot runs the one-time startup sequence, strictly ordered: icon
// registry init, route table freeze check, mount node verification,
// then the started transition. A failed Boot leaves the app unstarted
// and nothing rendered; a second Boot returns ErrAlreadyBooted.
func (a *App) Boot() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.booted {
		return ErrAlreadyBooted
	}

	icons.Register()

	if !a.router.Frozen() {
		return ErrNoRoutes
	}
	if err := a.verifyMount(); err != nil {
		return err
	}

	a.booted = true
	a.logger.Info("booted",
		"routes", len(a.router.Routes()),
		"mount_id", a.config.MountID)
	return nil
}

// verifyMount renders the layout chain around a sentinel child and
// checks the output for an element with the configured mount id. A
// shell that cannot host the mount is a deployment error; failing
// here keeps it out of production traffic.
func (a *App) verifyMount() error {
	match, ok := a.router.Match(http.MethodGet, "/")
	if !ok {
		return fmt.Errorf("%w: no route matches /", ErrNoRoutes)
	}
	layouts := match.GetLayouts()
	if len(layouts) == 0 {
		return fmt.Errorf("%w: route / has no layout shell", ErrMountPointMissing)
	}

	ctx := server.NewTestContext("/", server.WithTestPattern("/"))
	sentinel := vdom.Element("template", vdom.Attr{Key: "data-advisor-sentinel", Value: "true"})
	tree := sentinel
	for i := len(layouts) - 1; i >= 0; i-- {
		tree = vdom.Materialize(layouts[i](ctx, tree))
	}
	if !hasElementID(tree, a.config.MountID) {
		return fmt.Errorf("%w: no element with id %q", ErrMountPointMissing, a.config.MountID)
	}
	return nil
}

func hasElementID(node *vdom.VNode, id string) bool {
	if node == nil {
		return false
	}
	if node.Kind == vdom.KindElement {
		if v, ok := node.Props["id"]; ok && vdom.PropString(v) == id {
			return true
		}
	}
	for _, child := range node.Children {
		if hasElementID(child, id) {
			return true
		}
	}
	return false
}

// Booted reports whether Boot has completed.
func (a *App) Booted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.booted
}

// =============================================================================
// Serving
// =============================================================================

// Run serves the app on addr until ctx is done or SIGINT/SIGTERM
// arrives, then shuts down gracefully: HTTP first, then the session
// manager, so live sessions snapshot before the process exits.
func (a *App) Run(ctx context.Context, addr string) error {
	if !a.Booted() {
		return ErrNotBooted
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
			return
		}
		errc <- nil
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown", "error", err)
	}
	return a.manager.Shutdown(shutdownCtx)
}

// Shutdown stops the session manager without serving. Run does this
// itself; Shutdown is for embedders that own the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.manager.Shutdown(ctx)
}

// =============================================================================
// Accessors
// =============================================================================

// Router returns the route table, frozen after registration.
func (a *App) Router() *router.Router { return a.router }

// Manager returns the live session manager.
func (a *App) Manager() *server.Manager { return a.manager }

// Config returns the configuration New was called with, defaults
// applied.
func (a *App) Config() Config { return a.config }

// Renderer builds the SSR renderer for the configured mode.
func (a *App) renderer() *render.Renderer {
	return render.NewRenderer(render.Config{Pretty: a.config.DevMode})
}
