package server

import (
	"net/http"
	"net/url"
	"time"
)

// SessionConfig holds per-session tuning knobs.
type SessionConfig struct {
	// ReadTimeout is the maximum time to wait for a message from the
	// client. The heartbeat keeps healthy connections inside it.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HandshakeTimeout is the maximum time between the upgrade and the
	// client hello. Default: 10 seconds.
	HandshakeTimeout time.Duration

	// HeartbeatInterval is the time between keepalive pings.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageSize caps an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// MaxEventQueue is the event channel buffer size. Events past it
	// are dropped with an error frame. Default: 256.
	MaxEventQueue int

	// MaxPatchHistory is how many sent patch frames are retained for
	// replay after a reconnect. Default: 100.
	MaxPatchHistory int
}

// DefaultSessionConfig returns a SessionConfig with the defaults.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    64 * 1024,
		MaxEventQueue:     256,
		MaxPatchHistory:   100,
	}
}

// Clone returns a copy of the config.
func (c *SessionConfig) Clone() *SessionConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// normalize fills zero fields from the defaults.
func (c *SessionConfig) normalize() *SessionConfig {
	if c == nil {
		return DefaultSessionConfig()
	}
	d := DefaultSessionConfig()
	if c.ReadTimeout == 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.MaxEventQueue == 0 {
		c.MaxEventQueue = d.MaxEventQueue
	}
	if c.MaxPatchHistory == 0 {
		c.MaxPatchHistory = d.MaxPatchHistory
	}
	return c
}

// SameOriginCheck validates that the WebSocket request origin matches
// the host. It is the default CheckOrigin: cross-site pages must not
// be able to drive someone else's session.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header (same-origin fetch, curl).
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}
