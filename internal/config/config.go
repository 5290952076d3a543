package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Upload backends.
const (
	UploadDisk = "disk"
	UploadS3   = "s3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the full advisord configuration, parsed from the
// environment.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"ADVISOR_ADDR" envDefault:":8080"`

	// Env names the deployment environment; "development" enables dev
	// behavior such as .env loading and pretty SSR output.
	Env string `env:"ADVISOR_ENV" envDefault:"development"`

	// Title is the document title of rendered pages.
	Title string `env:"ADVISOR_TITLE" envDefault:"Campus Advisor"`

	// MountID is the id of the mount node inside the layout shell.
	MountID string `env:"ADVISOR_MOUNT_ID" envDefault:"app"`

	Log     LogConfig
	Static  StaticConfig
	Upload  UploadConfig
	Session SessionConfig
}

// LogConfig controls slog output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"ADVISOR_LOG_LEVEL" envDefault:"info"`

	// Format is "text" or "json".
	Format string `env:"ADVISOR_LOG_FORMAT" envDefault:"text"`
}

// StaticConfig controls serving of files under /static/.
type StaticConfig struct {
	// Dir is the directory served; empty disables static serving.
	Dir string `env:"ADVISOR_STATIC_DIR"`
}

// UploadConfig selects and configures the avatar store.
type UploadConfig struct {
	// Backend is "disk" or "s3".
	Backend string `env:"ADVISOR_UPLOAD_BACKEND" envDefault:"disk"`

	// Dir is the disk store root.
	Dir string `env:"ADVISOR_UPLOAD_DIR" envDefault:"uploads"`

	// S3 settings, used when Backend is "s3". Region falls back to the
	// AWS SDK's own resolution when empty.
	S3Bucket string `env:"ADVISOR_S3_BUCKET"`
	S3Prefix string `env:"ADVISOR_S3_PREFIX" envDefault:"avatars/"`

	// MaxBytes caps one uploaded file.
	MaxBytes int64 `env:"ADVISOR_UPLOAD_MAX_BYTES" envDefault:"5242880"`
}

// SessionConfig controls live sessions and their snapshots.
type SessionConfig struct {
	// RedisURL enables the Redis snapshot store when set, e.g.
	// redis://localhost:6379/0. Empty keeps snapshots in memory.
	RedisURL string `env:"ADVISOR_REDIS_URL"`

	// TTL is how long an idle attached session lives.
	TTL time.Duration `env:"ADVISOR_SESSION_TTL" envDefault:"30m"`

	// ResumeWindow is how long a detached session waits for its client.
	ResumeWindow time.Duration `env:"ADVISOR_RESUME_WINDOW" envDefault:"5m"`

	// MaxSessions caps concurrently live sessions.
	MaxSessions int `env:"ADVISOR_MAX_SESSIONS" envDefault:"10000"`
}

// Load parses the environment into a Config and validates it. When
// ADVISOR_ENV is unset or "development", a .env file in the working
// directory is loaded first; a missing file is not an error.
func Load() (*Config, error) {
	if dev(envName()) {
		_ = godotenv.Load()
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envName() string {
	var probe struct {
		Env string `env:"ADVISOR_ENV" envDefault:"development"`
	}
	_ = env.Parse(&probe)
	return probe.Env
}

func dev(name string) bool {
	switch strings.ToLower(name) {
	case "", "dev", "development", "local":
		return true
	}
	return false
}

// Dev reports whether the configuration names a development
// environment.
func (c *Config) Dev() bool { return dev(c.Env) }

// Validate checks cross-field constraints. Parse errors are already
// caught by env.Parse; this covers what tags cannot express.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: listen address is empty", ErrInvalid)
	}
	if c.MountID == "" {
		return fmt.Errorf("%w: mount id is empty", ErrInvalid)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format)
	}
	switch c.Upload.Backend {
	case UploadDisk:
		if c.Upload.Dir == "" {
			return fmt.Errorf("%w: upload backend %q needs ADVISOR_UPLOAD_DIR", ErrInvalid, UploadDisk)
		}
	case UploadS3:
		if c.Upload.S3Bucket == "" {
			return fmt.Errorf("%w: upload backend %q needs ADVISOR_S3_BUCKET", ErrInvalid, UploadS3)
		}
	default:
		return fmt.Errorf("%w: unknown upload backend %q", ErrInvalid, c.Upload.Backend)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("%w: upload max bytes must be positive", ErrInvalid)
	}
	if c.Session.TTL <= 0 || c.Session.ResumeWindow <= 0 {
		return fmt.Errorf("%w: session TTL and resume window must be positive", ErrInvalid)
	}
	if c.Session.MaxSessions <= 0 {
		return fmt.Errorf("%w: max sessions must be positive", ErrInvalid)
	}
	return nil
}

// LogLevel maps the configured level name to a slog.Level.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogHandler builds the slog handler the configuration asks for.
func (c *Config) LogHandler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	if strings.ToLower(c.Log.Format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
