package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrBadEvent is returned for an event payload that does not parse or
// fails validation.
var ErrBadEvent = errors.New("protocol: malformed event")

// EventType discriminates client-to-server events.
type EventType string

const (
	// EventDOM reports an interaction with a hydrated element.
	EventDOM EventType = "dom"
	// EventNavigate asks the session to render a different route.
	EventNavigate EventType = "navigate"
	// EventPopState reports a history traversal the browser already
	// performed; the session re-renders without pushing a new entry.
	EventPopState EventType = "popstate"
)

// Event is one client interaction.
type Event struct {
	Type EventType `json:"type"`

	// Seq is the client's last applied patch sequence, echoed so the
	// server can detect a stale client after reconnect.
	Seq uint64 `json:"seq,omitempty"`

	// DOM events.
	HID     string `json:"hid,omitempty"`
	Name    string `json:"name,omitempty"`
	Value   string `json:"value,omitempty"`
	Checked bool   `json:"checked,omitempty"`

	// Form carries named input values on submit.
	Form map[string]string `json:"form,omitempty"`

	// Navigate and popstate target.
	Path string `json:"path,omitempty"`
}

// EncodeEvent returns the JSON payload for an event frame.
func EncodeEvent(ev *Event) ([]byte, error) {
	return json.Marshal(ev)
}

// DecodeEvent parses and validates an event payload.
func DecodeEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEvent, err)
	}
	switch ev.Type {
	case EventDOM:
		if ev.HID == "" || ev.Name == "" {
			return nil, fmt.Errorf("%w: dom event needs hid and name", ErrBadEvent)
		}
	case EventNavigate, EventPopState:
		if ev.Path == "" {
			return nil, fmt.Errorf("%w: %s event needs path", ErrBadEvent, ev.Type)
		}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrBadEvent, ev.Type)
	}
	return &ev, nil
}
