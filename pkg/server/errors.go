package server

import (
	"errors"
	"fmt"
)

// Sentinel errors for common session and routing failures.
var (
	// ErrSessionClosed is returned when an operation is attempted on a
	// closed session.
	ErrSessionClosed = errors.New("server: session closed")

	// ErrSessionNotFound is returned when a session ID does not exist.
	ErrSessionNotFound = errors.New("server: session not found")

	// ErrSessionExpired is returned when a session's resume window has
	// passed.
	ErrSessionExpired = errors.New("server: session expired")

	// ErrEventQueueFull is returned when the event queue is full and an
	// event is dropped.
	ErrEventQueueFull = errors.New("server: event queue full")

	// ErrNoConnection is returned when a write needs a socket and the
	// session is detached.
	ErrNoConnection = errors.New("server: no connection")

	// ErrMaxSessionsReached is returned when the manager is at capacity.
	ErrMaxSessionsReached = errors.New("server: max sessions reached")

	// ErrManagerClosed is returned when the session manager has shut down.
	ErrManagerClosed = errors.New("server: session manager closed")

	// ErrNoRoute is returned when a path matches nothing and no fallback
	// page is installed.
	ErrNoRoute = errors.New("server: no route matched")
)

// SessionError wraps an error with session context for logs.
type SessionError struct {
	SessionID string
	Op        string
	Err       error
}

// Error returns the error message with session context.
func (e *SessionError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("server: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("server: session %s: %s: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError creates a new SessionError.
func NewSessionError(sessionID, op string, err error) *SessionError {
	return &SessionError{SessionID: sessionID, Op: op, Err: err}
}

// HandlerError reports a panic recovered from an event handler or a
// page render.
type HandlerError struct {
	SessionID string
	HID       string
	Event     string
	Panic     any
	Stack     []byte
}

// Error returns the error message.
func (e *HandlerError) Error() string {
	if e.HID == "" {
		return fmt.Sprintf("server: render panic in session %s: %v", e.SessionID, e.Panic)
	}
	return fmt.Sprintf("server: handler panic in session %s, HID %s, event %s: %v",
		e.SessionID, e.HID, e.Event, e.Panic)
}

// NewHandlerError creates a new HandlerError.
func NewHandlerError(sessionID, hid, event string, panicVal any, stack []byte) *HandlerError {
	return &HandlerError{
		SessionID: sessionID,
		HID:       hid,
		Event:     event,
		Panic:     panicVal,
		Stack:     stack,
	}
}
