package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marycampus/advisor/pkg/protocol"
	"github.com/marycampus/advisor/pkg/routepath"
	sessionstore "github.com/marycampus/advisor/pkg/session"
)

const (
	// DefaultResumeWindow is how long a detached session waits for its
	// client before the sweeper collects it.
	DefaultResumeWindow = 5 * time.Minute

	// DefaultIdleTimeout closes attached sessions with no activity.
	DefaultIdleTimeout = 30 * time.Minute

	// DefaultSweepInterval is how often expired sessions are swept.
	DefaultSweepInterval = time.Minute

	// DefaultMaxSessions caps concurrently live sessions.
	DefaultMaxSessions = 10000
)

// Options configure a Manager.
type Options struct {
	// Router resolves routes for every session this manager creates.
	Router Router

	// Session holds per-session tunables; nil means defaults.
	Session *SessionConfig

	// Store persists snapshots so sessions survive process restarts.
	// Nil limits resume to the lifetime of this process.
	Store sessionstore.Store

	ResumeWindow  time.Duration
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	MaxSessions   int

	Logger *slog.Logger
}

// Manager owns the live sessions of one process: creation, lookup,
// resume, expiry, and graceful shutdown.
type Manager struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*Session

	totalCreated  atomic.Uint64
	totalClosed   atomic.Uint64
	totalRestored atomic.Uint64

	// Counters carried over from closed sessions, so totals survive
	// session teardown.
	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64
	patchesSent   atomic.Uint64
	eventsHandled atomic.Uint64

	onCreate func(*Session)
	onClose  func(*Session)

	done   chan struct{}
	closed atomic.Bool
}

// NewManager returns a running manager. Callers must Shutdown it to
// stop the sweeper and persist live sessions.
func NewManager(opts Options) *Manager {
	if opts.Session == nil {
		opts.Session = DefaultSessionConfig()
	}
	opts.Session = opts.Session.Clone().normalize()
	if opts.ResumeWindow <= 0 {
		opts.ResumeWindow = DefaultResumeWindow
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	m := &Manager{
		opts:     opts,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// SessionConfig returns the per-session configuration in use.
func (m *Manager) SessionConfig() *SessionConfig { return m.opts.Session }

// Create makes a fresh, unmounted session. The request is the SSR or
// handshake request that triggered creation.
func (m *Manager) Create(r *http.Request) (*Session, error) {
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}
	m.mu.Lock()
	if len(m.sessions) >= m.opts.MaxSessions {
		m.mu.Unlock()
		return nil, ErrMaxSessionsReached
	}
	sess := newSession("", m.opts.Router, m.opts.Session, m.opts.Logger)
	sess.onClose = m.sessionClosed
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	m.totalCreated.Add(1)
	remote := ""
	if r != nil {
		remote = r.RemoteAddr
	}
	m.opts.Logger.Debug("session created", "session_id", sess.ID, "remote", remote)
	if m.onCreate != nil {
		m.onCreate(sess)
	}
	return sess, nil
}

// Get returns the live session with the given ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Restore rebuilds a session from the snapshot store. The restored
// session is a new instance carrying the old identity, data, and
// route; its tree is rendered fresh, so the client needs a full
// resync after attaching.
func (m *Manager) Restore(ctx context.Context, id string) (*Session, error) {
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}
	m.mu.RLock()
	existing, live := m.sessions[id]
	m.mu.RUnlock()
	if live {
		return existing, nil
	}
	if m.opts.Store == nil {
		return nil, NewSessionError(id, "restore", ErrSessionExpired)
	}
	data, err := m.opts.Store.Load(ctx, id)
	if err != nil {
		return nil, NewSessionError(id, "restore", err)
	}
	if data == nil {
		return nil, NewSessionError(id, "restore", ErrSessionExpired)
	}
	snap, err := sessionstore.DecodeSnapshot(data)
	if err != nil {
		return nil, NewSessionError(id, "restore", err)
	}

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		// Another socket restored it first; share the instance.
		m.mu.Unlock()
		return existing, nil
	}
	if len(m.sessions) >= m.opts.MaxSessions {
		m.mu.Unlock()
		return nil, ErrMaxSessionsReached
	}
	sess := newSession(snap.ID, m.opts.Router, m.opts.Session, m.opts.Logger)
	sess.onClose = m.sessionClosed
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	sess.sendSeq.Store(snap.Seq)
	sess.restoreFromSnapshot(snap)

	route := snap.Route
	if route == "" {
		route = "/"
	}
	p, q := routepath.Split(route)
	if _, err := sess.Mount(sess.liveContext(p, q), route); err != nil {
		sess.Close()
		return nil, NewSessionError(id, "restore", err)
	}

	m.opts.Store.Delete(ctx, id)
	m.totalRestored.Add(1)
	m.opts.Logger.Info("session restored", "session_id", id, "route", route)
	if m.onCreate != nil {
		m.onCreate(sess)
	}
	return sess, nil
}

// CloseSession persists and closes one session.
func (m *Manager) CloseSession(id string) {
	sess, ok := m.Get(id)
	if !ok {
		return
	}
	m.persist(sess)
	sess.Close()
}

// sessionClosed runs as every session's onClose hook.
func (m *Manager) sessionClosed(sess *Session) {
	m.mu.Lock()
	delete(m.sessions, sess.ID)
	m.mu.Unlock()

	st := sess.Stats()
	m.bytesSent.Add(st.BytesSent)
	m.bytesReceived.Add(st.BytesReceived)
	m.patchesSent.Add(st.Patches)
	m.eventsHandled.Add(st.Events)
	m.totalClosed.Add(1)
	if m.onClose != nil {
		m.onClose(sess)
	}
}

// persist writes a session's snapshot to the store, if one is
// configured. The snapshot expires after the resume window.
func (m *Manager) persist(sess *Session) {
	if m.opts.Store == nil {
		return
	}
	snap := sess.Snapshot()
	data, err := sessionstore.EncodeSnapshot(snap)
	if err != nil {
		m.opts.Logger.Warn("snapshot encode failed", "session_id", sess.ID, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.opts.Store.Save(ctx, snap.ID, data, time.Now().Add(m.opts.ResumeWindow)); err != nil {
		m.opts.Logger.Warn("snapshot save failed", "session_id", sess.ID, "error", err)
	}
}

func (m *Manager) sweepLoop() {
	ticker := time.NewTicker(m.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep(time.Now())
		case <-m.done:
			return
		}
	}
}

// sweep collects sessions past their windows: detached ones whose
// client never came back, and attached ones idle beyond the timeout.
// Both are persisted before closing so a late client can still come
// back through the store.
func (m *Manager) sweep(now time.Time) {
	var victims []*Session
	m.mu.RLock()
	for _, sess := range m.sessions {
		switch {
		case !sess.IsAttached():
			if d := sess.DetachedAt(); !d.IsZero() && now.Sub(d) > m.opts.ResumeWindow {
				victims = append(victims, sess)
			}
		case now.Sub(sess.LastActive()) > m.opts.IdleTimeout:
			victims = append(victims, sess)
		}
	}
	m.mu.RUnlock()

	for _, sess := range victims {
		m.opts.Logger.Info("session expired",
			"session_id", sess.ID, "attached", sess.IsAttached(),
			"last_active", sess.LastActive())
		if sess.IsAttached() {
			sess.sendError(&protocol.ErrorFrame{
				Code:  protocol.ErrCodeSessionExpired,
				Fatal: true,
			})
		}
		m.persist(sess)
		sess.Close()
	}
}

// Shutdown stops the sweeper, persists every live session in one
// batch, and closes them. Safe to call once.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.closed.Swap(true) {
		return nil
	}
	close(m.done)

	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		all = append(all, sess)
	}
	m.mu.RUnlock()

	var saveErr error
	if m.opts.Store != nil && len(all) > 0 {
		records := make(map[string]sessionstore.Record, len(all))
		expires := time.Now().Add(m.opts.ResumeWindow)
		for _, sess := range all {
			data, err := sessionstore.EncodeSnapshot(sess.Snapshot())
			if err != nil {
				m.opts.Logger.Warn("snapshot encode failed", "session_id", sess.ID, "error", err)
				continue
			}
			records[sess.ID] = sessionstore.Record{Data: data, ExpiresAt: expires}
		}
		saveErr = m.opts.Store.SaveAll(ctx, records)
		if saveErr != nil {
			m.opts.Logger.Error("session persist on shutdown failed", "error", saveErr)
		}
	}
	for _, sess := range all {
		sess.Close()
	}
	m.opts.Logger.Info("session manager stopped", "persisted", len(all))
	return saveErr
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ForEach calls fn for every live session.
func (m *Manager) ForEach(fn func(*Session)) {
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		all = append(all, sess)
	}
	m.mu.RUnlock()
	for _, sess := range all {
		fn(sess)
	}
}

// SetOnSessionCreate registers a hook run after each session is
// created or restored. Set before serving traffic.
func (m *Manager) SetOnSessionCreate(fn func(*Session)) { m.onCreate = fn }

// SetOnSessionClose registers a hook run after each session closes.
// Set before serving traffic.
func (m *Manager) SetOnSessionClose(fn func(*Session)) { m.onClose = fn }

// ManagerStats aggregates counters across live and closed sessions.
type ManagerStats struct {
	Live          int
	TotalCreated  uint64
	TotalClosed   uint64
	TotalRestored uint64
	BytesSent     uint64
	BytesReceived uint64
	PatchesSent   uint64
	EventsHandled uint64
}

// Stats returns the manager's aggregate counters.
func (m *Manager) Stats() ManagerStats {
	st := ManagerStats{
		TotalCreated:  m.totalCreated.Load(),
		TotalClosed:   m.totalClosed.Load(),
		TotalRestored: m.totalRestored.Load(),
		BytesSent:     m.bytesSent.Load(),
		BytesReceived: m.bytesReceived.Load(),
		PatchesSent:   m.patchesSent.Load(),
		EventsHandled: m.eventsHandled.Load(),
	}
	m.mu.RLock()
	st.Live = len(m.sessions)
	live := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		live = append(live, sess)
	}
	m.mu.RUnlock()
	for _, sess := range live {
		s := sess.Stats()
		st.BytesSent += s.BytesSent
		st.BytesReceived += s.BytesReceived
		st.PatchesSent += s.Patches
		st.EventsHandled += s.Events
	}
	return st
}
