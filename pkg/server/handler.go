package server

import (
	"time"

	"github.com/marycampus/advisor/pkg/protocol"
)

// Handler processes one DOM event on the session's event loop.
type Handler func(*Event)

// Event is a client interaction delivered to a handler.
type Event struct {
	// Seq is the client's last applied patch sequence when the event
	// was sent.
	Seq uint64

	// Name is the DOM event name: "click", "input", "submit", ...
	Name string

	// HID is the hydration ID of the element that fired.
	HID string

	// Value carries the input value for input and change events.
	Value string

	// Checked carries the checkbox state for change events.
	Checked bool

	// Form carries named field values for submit events.
	Form FormData

	// Session is the session the event belongs to.
	Session *Session

	// Time is when the server accepted the event.
	Time time.Time
}

// FormData holds the submitted values of a form.
type FormData struct {
	values map[string]string
}

// Get returns the value for name, or "".
func (f FormData) Get(name string) string {
	return f.values[name]
}

// Has reports whether name was submitted.
func (f FormData) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

// All returns a copy of every submitted value.
func (f FormData) All() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Len returns the number of submitted values.
func (f FormData) Len() int { return len(f.values) }

// NewFormData builds FormData from a value map. Used by tests and by
// the protocol conversion.
func NewFormData(values map[string]string) FormData {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return FormData{values: copied}
}

// wrapHandler adapts the handler shapes element constructors accept
// into the canonical Handler. Supported shapes:
//
//	func()              any event, no data
//	func(*Event)        full event access
//	func(string)        input value
//	func(bool)          checkbox state
//	func(FormData)      submitted form
//
// Anything else returns nil and the prop is ignored with a warning.
func wrapHandler(v any) Handler {
	switch h := v.(type) {
	case func():
		return func(*Event) { h() }
	case func(*Event):
		return Handler(h)
	case Handler:
		return h
	case func(string):
		return func(e *Event) { h(e.Value) }
	case func(bool):
		return func(e *Event) { h(e.Checked) }
	case func(FormData):
		return func(e *Event) { h(e.Form) }
	default:
		return nil
	}
}

// handlerKey indexes a handler by element and event name.
func handlerKey(hid, name string) string {
	return hid + "_" + name
}

// eventFromProtocol converts a decoded wire event for dispatch.
func eventFromProtocol(pe *protocol.Event, s *Session) *Event {
	return &Event{
		Seq:     pe.Seq,
		Name:    pe.Name,
		HID:     pe.HID,
		Value:   pe.Value,
		Checked: pe.Checked,
		Form:    NewFormData(pe.Form),
		Session: s,
		Time:    time.Now(),
	}
}
