package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/marycampus/advisor/pkg/protocol"
	"github.com/marycampus/advisor/pkg/routepath"
)

// readLoop consumes frames from one connection until it errors or the
// session closes. Each Attach starts a fresh loop for its connection;
// a loop whose connection was replaced exits through the read error.
func (s *Session) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(s.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

	for {
		select {
		case <-s.done:
			return
		default:
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.detachConn(conn)
			return
		}
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		s.bytesReceived.Add(uint64(len(data)))
		s.touch()

		if err := s.handleFrame(data); err != nil {
			s.logger.Debug("bad frame", "error", err)
			s.sendError(&protocol.ErrorFrame{
				Code:    protocol.ErrCodeBadFrame,
				Message: err.Error(),
			})
		}
	}
}

// writeLoop sends protocol-level pings for as long as the session
// lives. The client's pong, like any inbound frame, refreshes the
// read deadline.
func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if !s.IsAttached() {
				continue
			}
			s.sendControl(&protocol.Control{
				Op:  protocol.ControlPing,
				Seq: uint64(time.Now().UnixMilli()),
			})
		case <-s.done:
			return
		}
	}
}

func (s *Session) sendControl(c *protocol.Control) {
	payload, err := protocol.EncodeControl(c)
	if err != nil {
		return
	}
	s.writeRaw(protocol.NewFrame(protocol.FrameControl, payload).Encode())
}

// handleFrame decodes one inbound frame and routes it by type.
func (s *Session) handleFrame(data []byte) error {
	frame, err := protocol.DecodeFrame(data)
	if err != nil {
		return err
	}
	switch frame.Type {
	case protocol.FrameEvent:
		pe, err := protocol.DecodeEvent(frame.Payload)
		if err != nil {
			return err
		}
		return s.handleProtocolEvent(pe)
	case protocol.FrameControl:
		c, err := protocol.DecodeControl(frame.Payload)
		if err != nil {
			return err
		}
		s.handleControl(c)
		return nil
	case protocol.FrameAck:
		seq, err := protocol.DecodeAck(frame.Payload)
		if err != nil {
			return err
		}
		s.ackSeq.Store(seq)
		return nil
	default:
		return fmt.Errorf("server: unexpected frame type %s", frame.Type)
	}
}

// handleProtocolEvent hands a decoded event to the loop. DOM events
// queue; navigations schedule and nudge the loop, which performs them
// in its settle pass.
func (s *Session) handleProtocolEvent(pe *protocol.Event) error {
	switch pe.Type {
	case protocol.EventDOM:
		err := s.QueueEvent(eventFromProtocol(pe, s))
		if errors.Is(err, ErrEventQueueFull) {
			s.logger.Warn("event queue full", "hid", pe.HID, "event", pe.Name)
			s.sendError(&protocol.ErrorFrame{
				Code:    protocol.ErrCodeRateLimited,
				Message: "event queue full",
			})
			return nil
		}
		return err
	case protocol.EventNavigate:
		s.scheduleNavigation(&pendingNav{path: pe.Path, mode: navPush})
		s.Dispatch(func() {})
		return nil
	case protocol.EventPopState:
		// The browser already moved; render the target without
		// touching history.
		s.scheduleNavigation(&pendingNav{path: pe.Path, mode: navNone})
		s.Dispatch(func() {})
		return nil
	default:
		return protocol.ErrBadEvent
	}
}

func (s *Session) handleControl(c *protocol.Control) {
	switch c.Op {
	case protocol.ControlPing:
		s.sendControl(&protocol.Control{Op: protocol.ControlPong, Seq: c.Seq})
	case protocol.ControlPong:
		// The read itself refreshed the deadline.
	case protocol.ControlResync:
		lastSeq := c.Seq
		s.Dispatch(func() { s.recoverClient(lastSeq) })
	}
}

// =============================================================================
// Live endpoint
// =============================================================================

// LiveHandler upgrades live connections and runs the handshake that
// binds a socket to a session.
type LiveHandler struct {
	manager  *Manager
	csrf     *CSRFGuard
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewLiveHandler returns the HTTP handler for the live endpoint. csrf
// may be nil to skip token validation.
func NewLiveHandler(m *Manager, csrf *CSRFGuard, logger *slog.Logger) *LiveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveHandler{
		manager: m,
		csrf:    csrf,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     SameOriginCheck,
		},
	}
}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	if err := h.handshake(conn, r); err != nil {
		h.logger.Debug("handshake failed", "remote", r.RemoteAddr, "error", err)
		conn.Close()
	}
}

// handshake reads the client hello and binds the socket: to the named
// session if it is still alive, to one restored from the snapshot
// store, or to a fresh one when none was named. An unknown session ID
// is answered with an expired status and no new session; the client
// reloads and comes back through SSR.
func (h *LiveHandler) handshake(conn *websocket.Conn, r *http.Request) error {
	cfg := h.manager.SessionConfig()
	conn.SetReadLimit(cfg.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(cfg.HandshakeTimeout))

	_, data, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	frame, err := protocol.DecodeFrame(data)
	if err != nil {
		return err
	}
	if frame.Type != protocol.FrameHandshake {
		return fmt.Errorf("server: expected handshake frame, got %s", frame.Type)
	}
	hello, err := protocol.DecodeClientHello(frame.Payload)
	if err != nil {
		return err
	}
	conn.SetReadDeadline(time.Time{})

	if hello.Version != protocol.Version {
		h.refuse(conn, protocol.HandshakeVersionMismatch)
		return fmt.Errorf("server: client protocol %d, want %d", hello.Version, protocol.Version)
	}
	if h.csrf != nil && !h.csrf.Validate(r, hello.CSRFToken) {
		h.refuse(conn, protocol.HandshakeRejected)
		return errors.New("server: csrf validation failed")
	}

	if hello.SessionID == "" {
		return h.attachFresh(conn, r, hello)
	}
	if sess, ok := h.manager.Get(hello.SessionID); ok && !sess.IsClosed() {
		if err := h.greet(conn, sess, protocol.HandshakeResumed); err != nil {
			return err
		}
		return sess.Attach(conn, hello.LastSeq)
	}
	if sess, err := h.manager.Restore(r.Context(), hello.SessionID); err == nil {
		if err := h.greet(conn, sess, protocol.HandshakeResumed); err != nil {
			return err
		}
		if err := sess.Attach(conn, hello.LastSeq); err != nil {
			return err
		}
		// The restored tree was rebuilt from scratch; the client's DOM
		// predates it, so only a full resync lines them up.
		sess.Dispatch(func() { sess.sendResyncFull() })
		return nil
	}
	h.refuse(conn, protocol.HandshakeExpired)
	return NewSessionError(hello.SessionID, "handshake", ErrSessionExpired)
}

// attachFresh serves a client that connected without a session, which
// happens when SSR state was lost (a cleared cache, a proxied
// document). The session mounts the client's current path and a full
// resync replaces whatever DOM the client has.
func (h *LiveHandler) attachFresh(conn *websocket.Conn, r *http.Request, hello *protocol.ClientHello) error {
	sess, err := h.manager.Create(r)
	if err != nil {
		h.refuse(conn, protocol.HandshakeRejected)
		return err
	}
	path := hello.Path
	if path == "" {
		path = "/"
	}
	p, q := routepath.Split(path)
	if _, err := sess.Mount(sess.liveContext(p, q), path); err != nil {
		h.manager.CloseSession(sess.ID)
		h.refuse(conn, protocol.HandshakeRejected)
		return err
	}
	if err := h.greet(conn, sess, protocol.HandshakeOK); err != nil {
		return err
	}
	if err := sess.Attach(conn, hello.LastSeq); err != nil {
		return err
	}
	sess.Dispatch(func() { sess.sendResyncFull() })
	return nil
}

func (h *LiveHandler) greet(conn *websocket.Conn, sess *Session, status protocol.HandshakeStatus) error {
	payload, err := protocol.EncodeServerHello(&protocol.ServerHello{
		Status:    status,
		SessionID: sess.ID,
		Seq:       sess.sendSeq.Load(),
		Time:      time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(h.manager.SessionConfig().WriteTimeout))
	return conn.WriteMessage(websocket.BinaryMessage,
		protocol.NewFrame(protocol.FrameHandshake, payload).Encode())
}

func (h *LiveHandler) refuse(conn *websocket.Conn, status protocol.HandshakeStatus) {
	payload, err := protocol.EncodeServerHello(&protocol.ServerHello{
		Status: status,
		Time:   time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	conn.WriteMessage(websocket.BinaryMessage,
		protocol.NewFrame(protocol.FrameHandshake, payload).Encode())
}
