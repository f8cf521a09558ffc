package inviteengine

import (
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/eringen/inviteengine/storage"
	"github.com/eringen/inviteengine/themes"
)

// Config holds all configuration for an invite engine deployment.
type Config struct {
	Name string // Site name (default "Party Invites")
	URL  string // Canonical URL (default "http://localhost:3000")
	Addr string // Listen address (default ":3000")

	DatabasePath string // SQLite path for invite history (default "data/invites.db")
	AssetsDir    string // Backgrounds and fonts on disk; empty uses the embedded assets
	ThemesFile   string // Theme JSON; empty uses the built-in themes

	Storage storage.Config // Where rendered invites are persisted

	AdminPassword string // Admin dashboard is enabled when both are set
	SessionSecret string
	CookieSecure  bool // Set true for HTTPS

	RenderRateLimit    int           // Renders per IP per minute (default 30)
	BackgroundCacheTTL time.Duration // Decoded background lifetime (default 10min)
	PreviewWidth       int           // Default preview width in pixels (default 424)
	JPEGQuality        int           // Preview quality (default 80)
	LogLevel           string        // logrus level (default "info")
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Party Invites"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/invites.db"
	}
	if c.Storage.Type == "" {
		c.Storage.Type = storage.BackendFilesystem
	}
	if c.Storage.LocalPath == "" {
		c.Storage.LocalPath = "data/invites"
	}
	if c.Storage.LocalURL == "" {
		c.Storage.LocalURL = invitesPrefix
	}
	if c.RenderRateLimit == 0 {
		c.RenderRateLimit = 30
	}
	if c.BackgroundCacheTTL == 0 {
		c.BackgroundCacheTTL = 10 * time.Minute
	}
	if c.PreviewWidth == 0 {
		c.PreviewWidth = 424
	}
	if c.JPEGQuality == 0 {
		c.JPEGQuality = 80
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// AdminEnabled reports whether the admin dashboard should be mounted.
func (c Config) AdminEnabled() bool {
	return c.AdminPassword != "" && c.SessionSecret != ""
}

// ConfigFromEnv loads a .env file if present and reads Config from the
// environment. Unset values are left for setDefaults.
func ConfigFromEnv() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found")
	}
	return Config{
		Name:         EnvOr("SITE_NAME", ""),
		URL:          EnvOr("SITE_URL", ""),
		Addr:         EnvOr("ADDR", ""),
		DatabasePath: EnvOr("DATABASE_PATH", ""),
		AssetsDir:    EnvOr("ASSETS_DIR", ""),
		ThemesFile:   EnvOr("THEMES_FILE", ""),
		Storage: storage.Config{
			Type:        EnvOr("STORAGE_TYPE", ""),
			LocalPath:   EnvOr("LOCAL_STORAGE_PATH", ""),
			S3Bucket:    EnvOr("S3_BUCKET_NAME", ""),
			S3Prefix:    EnvOr("S3_PREFIX", ""),
			S3PublicURL: EnvOr("S3_PUBLIC_URL", ""),
			Cloudinary: storage.CloudinaryConfig{
				Cloud:     EnvOr("CLOUDINARY_CLOUD_NAME", ""),
				Preset:    EnvOr("CLOUDINARY_UPLOAD_PRESET", ""),
				Folder:    EnvOr("CLOUDINARY_FOLDER", ""),
				APIKey:    EnvOr("CLOUDINARY_API_KEY", ""),
				APISecret: EnvOr("CLOUDINARY_API_SECRET", ""),
			},
		},
		AdminPassword:   EnvOr("ADMIN_PASSWORD", ""),
		SessionSecret:   EnvOr("SESSION_SECRET", ""),
		CookieSecure:    envBool("COOKIE_SECURE"),
		RenderRateLimit: envInt("RENDER_RATE_LIMIT", 0),
		LogLevel:        EnvOr("LOG_LEVEL", ""),
	}
}

// SetupLogging applies a logrus level by name.
func SetupLogging(level string) error {
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return nil
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(EnvOr(key, "false")))
	return v
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(EnvOr(key, "")))
	if err != nil {
		return fallback
	}
	return v
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithAssets replaces the asset filesystem that backgrounds and fonts are
// read from.
func WithAssets(fsys fs.FS) Option {
	return func(a *App) {
		a.assets = fsys
	}
}

// WithThemes uses reg instead of loading themes from Config.
func WithThemes(reg *themes.Registry) Option {
	return func(a *App) {
		a.Themes = reg
	}
}

// WithPersister uses p instead of building a backend from Config.Storage.
func WithPersister(p storage.Persister) Option {
	return func(a *App) {
		a.Persister = p
	}
}

// WithViews overrides the HTML views.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
