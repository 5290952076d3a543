package server

import (
	"testing"

	"github.com/marycampus/advisor/pkg/protocol"
)

func TestWrapHandlerShapes(t *testing.T) {
	ev := &Event{
		Name:    "change",
		Value:   "hello",
		Checked: true,
		Form:    NewFormData(map[string]string{"q": "deadline"}),
	}

	t.Run("func()", func(t *testing.T) {
		called := false
		h := wrapHandler(func() { called = true })
		if h == nil {
			t.Fatal("wrapHandler returned nil")
		}
		h(ev)
		if !called {
			t.Fatal("handler not called")
		}
	})

	t.Run("func(*Event)", func(t *testing.T) {
		var got *Event
		h := wrapHandler(func(e *Event) { got = e })
		h(ev)
		if got != ev {
			t.Fatal("event not passed through")
		}
	})

	t.Run("Handler", func(t *testing.T) {
		var got *Event
		h := wrapHandler(Handler(func(e *Event) { got = e }))
		h(ev)
		if got != ev {
			t.Fatal("event not passed through")
		}
	})

	t.Run("func(string)", func(t *testing.T) {
		var got string
		h := wrapHandler(func(v string) { got = v })
		h(ev)
		if got != "hello" {
			t.Fatalf("value = %q, want %q", got, "hello")
		}
	})

	t.Run("func(bool)", func(t *testing.T) {
		var got bool
		h := wrapHandler(func(v bool) { got = v })
		h(ev)
		if !got {
			t.Fatal("checked not passed through")
		}
	})

	t.Run("func(FormData)", func(t *testing.T) {
		var got FormData
		h := wrapHandler(func(f FormData) { got = f })
		h(ev)
		if got.Get("q") != "deadline" {
			t.Fatalf("form q = %q, want %q", got.Get("q"), "deadline")
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		if h := wrapHandler(func(int) {}); h != nil {
			t.Fatal("unsupported shape accepted")
		}
		if h := wrapHandler("not a func"); h != nil {
			t.Fatal("non-function accepted")
		}
	})
}

func TestFormData(t *testing.T) {
	f := NewFormData(map[string]string{"name": "amara", "email": ""})

	if f.Get("name") != "amara" {
		t.Fatalf("Get(name) = %q", f.Get("name"))
	}
	if !f.Has("email") {
		t.Fatal("Has(email) = false for a submitted empty field")
	}
	if f.Has("missing") {
		t.Fatal("Has(missing) = true")
	}
	if f.Len() != 2 {
		t.Fatalf("Len = %d, want 2", f.Len())
	}

	all := f.All()
	all["name"] = "mutated"
	if f.Get("name") != "amara" {
		t.Fatal("All returned the backing map")
	}
}

func TestHandlerKey(t *testing.T) {
	if got := handlerKey("h12", "click"); got != "h12_click" {
		t.Fatalf("key = %q, want %q", got, "h12_click")
	}
}

func TestEventFromProtocol(t *testing.T) {
	s := NewMockSession()
	pe := &protocol.Event{
		Type:    protocol.EventDOM,
		Seq:     7,
		HID:     "h3",
		Name:    "submit",
		Value:   "v",
		Checked: true,
		Form:    map[string]string{"q": "library hours"},
	}

	ev := eventFromProtocol(pe, s)
	if ev.Seq != 7 || ev.HID != "h3" || ev.Name != "submit" {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Value != "v" || !ev.Checked {
		t.Fatalf("payload = %q/%v", ev.Value, ev.Checked)
	}
	if ev.Form.Get("q") != "library hours" {
		t.Fatalf("form q = %q", ev.Form.Get("q"))
	}
	if ev.Session != s {
		t.Fatal("session not attached")
	}
	if ev.Time.IsZero() {
		t.Fatal("accept time not stamped")
	}
}
