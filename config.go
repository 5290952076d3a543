package advisor

import (
	"log/slog"
	"time"

	"github.com/marycampus/advisor/pkg/server"
	sessionstore "github.com/marycampus/advisor/pkg/session"
	"github.com/marycampus/advisor/pkg/upload"
)

// Config configures an App. The zero value runs a development
// instance with in-memory sessions and no static directory.
type Config struct {
	// Title is the document title of rendered pages.
	Title string

	// MountID is the id the layout shell's mount node must carry.
	// Boot verifies it exists before anything is served.
	MountID string

	// DevMode enables pretty SSR output and relaxed caching.
	DevMode bool

	Static  StaticConfig
	Session SessionConfig
	Uploads UploadConfig

	// SnapshotStore persists session snapshots across restarts. Nil
	// keeps resume in-process only.
	SnapshotStore sessionstore.Store

	// CSRFSecret keys the socket handshake and upload guard. Empty
	// generates an ephemeral secret at New, which is fine for a
	// single process.
	CSRFSecret []byte

	// Logger is the root logger. Nil uses slog.Default.
	Logger *slog.Logger
}

// StaticConfig controls serving of files from disk under Prefix.
type StaticConfig struct {
	// Dir is the served directory; empty disables static serving.
	Dir string

	// Prefix is the URL prefix, default "/static/".
	Prefix string
}

// SessionConfig tunes live sessions.
type SessionConfig struct {
	// IdleTimeout closes attached sessions with no activity.
	IdleTimeout time.Duration

	// ResumeWindow keeps detached sessions for reconnects.
	ResumeWindow time.Duration

	// MaxSessions caps concurrently live sessions.
	MaxSessions int

	// Tuning holds transport-level knobs; nil means defaults.
	Tuning *server.SessionConfig
}

// UploadConfig wires the avatar store.
type UploadConfig struct {
	// Store is the backend; nil disables the upload endpoints.
	Store upload.Store

	// MaxBytes caps one uploaded file; 0 uses the handler default.
	MaxBytes int64

	// AllowedTypes restricts declared content types; "image/*" style
	// wildcards allowed. Empty means images only.
	AllowedTypes []string
}

// DefaultMountID is the mount node id when Config.MountID is empty.
const DefaultMountID = "app"

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = "Campus Advisor"
	}
	if c.MountID == "" {
		c.MountID = DefaultMountID
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/static/"
	}
	if c.Session.IdleTimeout <= 0 {
		c.Session.IdleTimeout = server.DefaultIdleTimeout
	}
	if c.Session.ResumeWindow <= 0 {
		c.Session.ResumeWindow = server.DefaultResumeWindow
	}
	if c.Session.MaxSessions <= 0 {
		c.Session.MaxSessions = server.DefaultMaxSessions
	}
	if len(c.Uploads.AllowedTypes) == 0 {
		c.Uploads.AllowedTypes = []string{"image/*"}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
