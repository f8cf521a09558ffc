// Package inviteengine renders themed party invite images over HTTP, built
// with Go, Echo, and templ.
//
// Each invite is a theme background with the child's name, age, date and
// venue laid out in the theme's text zones. Rendered images are persisted
// to a configurable backend, falling back to an inline data URL when the
// backend is unavailable, and recorded in a SQLite history that the admin
// dashboard lists.
package inviteengine

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/eringen/inviteengine/compositor"
	"github.com/eringen/inviteengine/fonts"
	"github.com/eringen/inviteengine/storage"
	"github.com/eringen/inviteengine/themes"
	"github.com/eringen/inviteengine/views"
)

// invitesPrefix is where the filesystem backend's images are served.
const invitesPrefix = "/invites"

// ViewFuncs holds the templ components rendered for HTML pages. Replace any
// of them with WithViews.
type ViewFuncs struct {
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(invites []Invite, message string, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// DefaultViews returns the built-in pages.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		AdminLogin:     views.AdminLogin,
		AdminDashboard: views.AdminDashboard,
		NotFound:       views.NotFound,
		ServerError:    views.ServerError,
	}
}

// App is the central application. It wires together the theme and font
// registries, the compositor, persistence, the invite store, handlers and
// middleware.
type App struct {
	Config      Config
	Echo        *echo.Echo
	Store       *Store
	Themes      *themes.Registry
	Fonts       *fonts.Registry
	Backgrounds *compositor.BackgroundCache
	Compositor  *compositor.Compositor
	Persister   storage.Persister
	Views       ViewFuncs

	renderLimiter *RateLimiter
	loginLimiter  *RateLimiter
	assets        fs.FS
	customRoutes  []func(*App)
	ready         bool
}

// New creates an App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  DefaultViews(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup loads themes and fonts, opens the store, builds the persistence
// backend, and registers middleware and routes. Start calls it; tests call
// it directly and drive a.Echo with httptest.
func (a *App) Setup(ctx context.Context) error {
	if a.ready {
		return nil
	}

	if a.assets == nil {
		if a.Config.AssetsDir != "" {
			a.assets = os.DirFS(a.Config.AssetsDir)
		} else {
			a.assets = DefaultAssets()
		}
	}

	if a.Themes == nil {
		reg, err := LoadThemes(a.Config.ThemesFile)
		if err != nil {
			return fmt.Errorf("inviteengine: load themes: %w", err)
		}
		a.Themes = reg
	}

	// Fonts are registered once, before any request is served.
	a.Fonts = fonts.Initialize(a.assets, a.Themes.Fonts())
	a.Backgrounds = compositor.NewBackgroundCache(a.assets, a.Config.BackgroundCacheTTL)
	a.Compositor = compositor.New(a.Themes, a.Fonts, a.Backgrounds)

	if a.Persister == nil {
		p, err := storage.FromConfig(ctx, a.Config.Storage)
		if err != nil {
			return fmt.Errorf("inviteengine: init storage: %w", err)
		}
		a.Persister = p
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("inviteengine: init store: %w", err)
	}
	a.Store = store

	if a.Config.RenderRateLimit > 0 {
		a.renderLimiter = NewRateLimiter(a.Config.RenderRateLimit, time.Minute)
	}
	if a.Config.AdminEnabled() {
		a.loginLimiter = NewRateLimiter(5, time.Minute)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	logrus.WithFields(logrus.Fields{
		"themes": a.Themes.Len(),
		"fonts":  a.Fonts.Families(),
		"admin":  a.Config.AdminEnabled(),
	}).Info("Invite engine ready")

	a.ready = true
	return nil
}

// Start runs Setup and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(context.Background()); err != nil {
		return err
	}
	logrus.WithField("addr", a.Config.Addr).Info("Listening")
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	if fsStore, ok := a.Persister.(*storage.FilesystemStore); ok && a.Config.Storage.LocalURL == invitesPrefix {
		e.Static(invitesPrefix, fsStore.Dir())
	}

	e.GET("/healthz", a.handleHealth)

	api := e.Group("/api")
	api.GET("/themes", a.handleThemes)
	api.GET("/themes/:key", a.handleTheme)
	api.POST("/invites", a.handleCreateInvite)
	api.POST("/invites/preview", a.handlePreview)

	if a.Config.AdminEnabled() {
		e.GET("/admin/", a.handleAdmin)
		e.POST("/admin/login/", a.handleAdminLogin)
		e.POST("/admin/logout/", handleAdminLogout)
		e.DELETE("/admin/invites/:id/", a.handleAdminDelete)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.renderLimiter != nil {
		a.renderLimiter.Stop()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// LoadThemes reads the theme file at path, or the built-in themes when path
// is empty.
func LoadThemes(path string) (*themes.Registry, error) {
	if path == "" {
		return themes.Default()
	}
	return themes.LoadFile(path)
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
