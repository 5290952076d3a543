package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	sessionstore "github.com/marycampus/advisor/pkg/session"
	"github.com/marycampus/advisor/pkg/vdom"
)

// Session is one browser tab's server-side state: the mounted route,
// the rendered tree, the handler index, and the live connection when
// one is attached.
//
// A session starts detached: the SSR request that creates it mounts
// the first route and serializes the tree into the document. The
// client then attaches over WebSocket. Losing the socket detaches the
// session again; it stays resumable until the manager's resume window
// passes. Close is terminal.
type Session struct {
	// ID is the session identity, a UUID.
	ID string

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	lastActive atomic.Int64 // unix nanos
	detachedAt atomic.Int64 // unix nanos; 0 while attached

	config *SessionConfig
	logger *slog.Logger
	router Router

	// mu orders connection writes and guards conn itself.
	mu     sync.Mutex
	conn   *websocket.Conn
	closed atomic.Bool

	events     chan *Event
	dispatchCh chan func()
	done       chan struct{}
	loops      atomic.Bool // event and write loops started
	inline     bool        // test sessions run dispatches inline

	lifeCtx  context.Context
	lifeStop context.CancelFunc

	// Route state. Written by Mount before attach and by the event
	// loop after; routeMu lets snapshots read it from outside.
	routeMu sync.RWMutex
	route   routeState

	// tree and handlers are owned by whoever renders: the mounting
	// goroutine before attach, the event loop after.
	tree     *vdom.VNode
	handlers map[string]Handler
	hidGen   *vdom.HIDGenerator

	pendingMu sync.Mutex
	pending   *pendingNav

	dataMu sync.RWMutex
	data   map[string]any

	listenerMu sync.Mutex
	listeners  map[string][]*listener
	listenerID int

	history *PatchHistory

	sendSeq       atomic.Uint64
	recvSeq       atomic.Uint64
	ackSeq        atomic.Uint64
	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64
	patchesSent   atomic.Uint64
	eventsHandled atomic.Uint64

	onClose func(*Session)
}

// routeState describes the currently mounted route.
type routeState struct {
	path     string // canonical path, no query
	query    string // raw query, no "?"
	pattern  string
	params   map[string]string
	page     vdom.Component
	layouts  []LayoutHandler
	notFound bool
	failed   bool
}

type listener struct {
	id int
	fn func(any)
}

func newSession(id string, router Router, config *SessionConfig, logger *slog.Logger) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	config = config.Clone().normalize()
	if logger == nil {
		logger = slog.Default()
	}
	lifeCtx, lifeStop := context.WithCancel(context.Background())
	s := &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		config:     config,
		logger:     logger.With("session_id", id),
		router:     router,
		events:     make(chan *Event, config.MaxEventQueue),
		dispatchCh: make(chan func(), config.MaxEventQueue),
		done:       make(chan struct{}),
		lifeCtx:    lifeCtx,
		lifeStop:   lifeStop,
		handlers:   make(map[string]Handler),
		hidGen:     vdom.NewHIDGenerator(),
		data:       make(map[string]any),
		listeners:  make(map[string][]*listener),
		history:    NewPatchHistory(config.MaxPatchHistory),
	}
	s.touch()
	s.detachedAt.Store(time.Now().UnixNano())
	return s
}

// NewMockSession returns a detached session for tests. It never
// starts goroutines; Dispatch runs inline.
func NewMockSession() *Session {
	s := newSession("", nil, DefaultSessionConfig(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.inline = true
	return s
}

// =============================================================================
// Lifecycle
// =============================================================================

// Attach binds a WebSocket connection to the session and starts its
// loops. lastSeq is the client's last applied patch sequence; missed
// patches are replayed from history, or a full resync is sent when
// the gap is unrecoverable.
func (s *Session) Attach(conn *websocket.Conn, lastSeq uint64) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}

	s.mu.Lock()
	old := s.conn
	s.conn = conn
	s.detachedAt.Store(0)
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}
	s.touch()
	s.recvSeq.Store(lastSeq)

	if s.loops.CompareAndSwap(false, true) {
		go s.eventLoop()
		go s.writeLoop()
	}
	go s.readLoop(conn)

	if lastSeq < s.sendSeq.Load() {
		// On the loop, so replay does not interleave with a render.
		s.Dispatch(func() { s.recoverClient(lastSeq) })
	}
	return nil
}

// detachConn drops the connection if it is still the current one.
// Called by the read loop on socket errors; a newer Attach wins.
func (s *Session) detachConn(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn != conn {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.mu.Unlock()
	conn.Close()
	s.detachedAt.Store(time.Now().UnixNano())
	s.logger.Debug("session detached")
}

// Close terminates the session. Idempotent; a closed session cannot
// be reattached, only restored from a snapshot as a new instance.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.lifeStop()
	close(s.done)

	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		deadline := time.Now().Add(time.Second)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		conn.Close()
	}
	if s.onClose != nil {
		s.onClose(s)
	}
}

// IsClosed reports whether Close has run.
func (s *Session) IsClosed() bool { return s.closed.Load() }

// IsAttached reports whether a connection is bound.
func (s *Session) IsAttached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// DetachedAt returns when the session lost its connection, or the
// zero time while attached.
func (s *Session) DetachedAt() time.Time {
	n := s.detachedAt.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// LastActive returns the time of the last client activity.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} { return s.done }

// Context is canceled when the session closes. Lazy resolutions and
// other waits during live rendering are bounded by it.
func (s *Session) Context() context.Context { return s.lifeCtx }

// Logger returns the session's logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// =============================================================================
// Event intake and loop
// =============================================================================

// QueueEvent hands an event to the loop without blocking.
func (s *Session) QueueEvent(ev *Event) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	select {
	case s.events <- ev:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// Dispatch runs fn on the event loop. Calls before the loop starts
// are queued and drained at attach. Events arriving after Close are
// dropped.
func (s *Session) Dispatch(fn func()) {
	if s.closed.Load() {
		return
	}
	if s.inline {
		s.runDispatch(fn)
		return
	}
	select {
	case s.dispatchCh <- fn:
	case <-s.done:
	default:
		s.logger.Warn("dispatch queue full, dropping")
	}
}

func (s *Session) eventLoop() {
	for {
		select {
		case ev := <-s.events:
			s.handleEvent(ev)
		case fn := <-s.dispatchCh:
			s.runDispatch(fn)
		case <-s.done:
			return
		}
	}
}

func (s *Session) handleEvent(ev *Event) {
	defer s.recoverRender(ev)

	s.eventsHandled.Add(1)
	if ev.Seq > 0 {
		s.recvSeq.Store(ev.Seq)
	}
	key := handlerKey(ev.HID, ev.Name)
	h, ok := s.handlers[key]
	if !ok {
		// Usually a race between a patch removing the element and the
		// event that was already in flight.
		s.logger.Debug("no handler", "hid", ev.HID, "event", ev.Name)
		return
	}
	h(ev)
	s.settle()
}

func (s *Session) runDispatch(fn func()) {
	defer s.recoverRender(nil)
	fn()
	s.settle()
}

// settle applies the effects of a handler: a scheduled navigation if
// one is pending, otherwise a re-render of the current route.
func (s *Session) settle() {
	if nav := s.takePendingNav(); nav != nil {
		if err := s.performNavigation(nav.path, nav.mode); err != nil {
			s.logger.Error("navigation failed", "path", nav.path, "error", err)
			s.sendError(errNavigation(err))
		}
		return
	}
	s.rerender()
}

// recoverRender converts a panic in a handler or render into the
// error page. The session survives.
func (s *Session) recoverRender(ev *Event) {
	r := recover()
	if r == nil {
		return
	}
	hid, name := "", ""
	if ev != nil {
		hid, name = ev.HID, ev.Name
	}
	herr := NewHandlerError(s.ID, hid, name, r, debug.Stack())
	s.logger.Error("handler panic", "error", herr, "stack", string(herr.Stack))
	s.showErrorPage(herr)
}

func (s *Session) scheduleNavigation(nav *pendingNav) {
	s.pendingMu.Lock()
	s.pending = nav
	s.pendingMu.Unlock()
}

func (s *Session) takePendingNav() *pendingNav {
	s.pendingMu.Lock()
	nav := s.pending
	s.pending = nil
	s.pendingMu.Unlock()
	return nav
}

// =============================================================================
// Listeners
// =============================================================================

// On registers fn for events emitted under name. The returned func
// removes the registration. Listeners run on the event loop.
func (s *Session) On(name string, fn func(data any)) func() {
	s.listenerMu.Lock()
	s.listenerID++
	l := &listener{id: s.listenerID, fn: fn}
	s.listeners[name] = append(s.listeners[name], l)
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		ls := s.listeners[name]
		for i, got := range ls {
			if got.id == l.id {
				s.listeners[name] = append(ls[:i], ls[i+1:]...)
				break
			}
		}
	}
}

// Emit delivers data to every listener registered under name, on the
// event loop. Safe to call from any goroutine; this is how work that
// finished outside the session (an upload, a timer) updates the view.
func (s *Session) Emit(name string, data any) {
	s.listenerMu.Lock()
	ls := s.listeners[name]
	fns := make([]func(any), len(ls))
	for i, l := range ls {
		fns[i] = l.fn
	}
	s.listenerMu.Unlock()
	if len(fns) == 0 {
		return
	}
	s.Dispatch(func() {
		for _, fn := range fns {
			fn(data)
		}
	})
}

// =============================================================================
// Session data
// =============================================================================

// Set stores a session-scoped value. JSON-serializable values survive
// resume; others live only as long as the process.
func (s *Session) Set(key string, value any) {
	s.dataMu.Lock()
	s.data[key] = value
	s.dataMu.Unlock()
}

// Get returns a session-scoped value, or nil.
func (s *Session) Get(key string) any {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.data[key]
}

// Delete removes a session-scoped value.
func (s *Session) Delete(key string) {
	s.dataMu.Lock()
	delete(s.data, key)
	s.dataMu.Unlock()
}

// Data returns a copy of all session data.
func (s *Session) Data() map[string]any {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// RestoreData replaces the session data wholesale, used when
// restoring from a snapshot.
func (s *Session) RestoreData(values map[string]any) {
	s.dataMu.Lock()
	s.data = make(map[string]any, len(values))
	for k, v := range values {
		s.data[k] = v
	}
	s.dataMu.Unlock()
}

// =============================================================================
// Route accessors
// =============================================================================

// CurrentPath returns the canonical path of the mounted route, with
// its query string when one is set.
func (s *Session) CurrentPath() string {
	s.routeMu.RLock()
	defer s.routeMu.RUnlock()
	if s.route.query != "" {
		return s.route.path + "?" + s.route.query
	}
	return s.route.path
}

// CurrentPattern returns the matched route pattern.
func (s *Session) CurrentPattern() string {
	s.routeMu.RLock()
	defer s.routeMu.RUnlock()
	return s.route.pattern
}

// CurrentTree returns the session's rendered tree. The tree is owned
// by the event loop; callers outside it may only inspect between
// renders, which tests do.
func (s *Session) CurrentTree() *vdom.VNode { return s.tree }

// renderContext builds the live Ctx for the current route.
func (s *Session) renderContext() Ctx {
	s.routeMu.RLock()
	path, query := s.route.path, s.route.query
	params, pattern := s.route.params, s.route.pattern
	s.routeMu.RUnlock()
	if path == "" {
		path = "/"
	}
	return &liveCtx{
		session: s,
		request: syntheticRequest(path, query),
		params:  params,
		pattern: pattern,
		logger:  s.logger,
		stdctx:  s.lifeCtx,
	}
}

func syntheticRequest(path, query string) *http.Request {
	return &http.Request{
		Method: http.MethodGet,
		URL:    &url.URL{Path: path, RawQuery: query},
		Header: http.Header{},
	}
}

// liveContext builds a Ctx for rendering path outside any HTTP
// request, as live navigation and resume mounting do.
func (s *Session) liveContext(path, query string) *liveCtx {
	return &liveCtx{
		session: s,
		request: syntheticRequest(path, query),
		logger:  s.logger,
		stdctx:  s.lifeCtx,
	}
}

// =============================================================================
// Snapshot and restore
// =============================================================================

// Snapshot captures the session for the resume store. Data values
// that do not marshal are skipped.
func (s *Session) Snapshot() *sessionstore.Snapshot {
	snap := &sessionstore.Snapshot{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		LastActive: s.LastActive(),
		Route:      s.CurrentPath(),
		Seq:        s.sendSeq.Load(),
		Values:     make(map[string]json.RawMessage),
	}
	s.routeMu.RLock()
	if len(s.route.params) > 0 {
		snap.RouteParams = make(map[string]string, len(s.route.params))
		for k, v := range s.route.params {
			snap.RouteParams[k] = v
		}
	}
	s.routeMu.RUnlock()
	for k, v := range s.Data() {
		raw, err := json.Marshal(v)
		if err != nil {
			s.logger.Debug("skipping unserializable session value", "key", k)
			continue
		}
		snap.Values[k] = raw
	}
	return snap
}

// restoreFromSnapshot loads the snapshot's data values. The route is
// remounted by the manager, not here.
func (s *Session) restoreFromSnapshot(snap *sessionstore.Snapshot) {
	values := make(map[string]any, len(snap.Values))
	for k, raw := range snap.Values {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			values[k] = v
		}
	}
	s.RestoreData(values)
	if !snap.CreatedAt.IsZero() {
		s.CreatedAt = snap.CreatedAt
	}
}

// =============================================================================
// Stats
// =============================================================================

// SessionStats is a point-in-time view of one session's counters.
type SessionStats struct {
	ID            string
	CreatedAt     time.Time
	LastActive    time.Time
	Attached      bool
	Route         string
	SendSeq       uint64
	AckSeq        uint64
	BytesSent     uint64
	BytesReceived uint64
	Patches       uint64
	Events        uint64
}

// Stats returns the session's counters.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		LastActive:    s.LastActive(),
		Attached:      s.IsAttached(),
		Route:         s.CurrentPath(),
		SendSeq:       s.sendSeq.Load(),
		AckSeq:        s.ackSeq.Load(),
		BytesSent:     s.bytesSent.Load(),
		BytesReceived: s.bytesReceived.Load(),
		Patches:       s.patchesSent.Load(),
		Events:        s.eventsHandled.Load(),
	}
}
