package protocol

import (
	"errors"
	"testing"
)

func TestEventRoundTrip(t *testing.T) {
	in := &Event{
		Type:  EventDOM,
		Seq:   9,
		HID:   "h12",
		Name:  "submit",
		Value: "",
		Form:  map[string]string{"question": "when is enrollment?"},
	}
	data, err := EncodeEvent(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Type != EventDOM || out.HID != "h12" || out.Name != "submit" || out.Seq != 9 {
		t.Errorf("got %+v", out)
	}
	if out.Form["question"] != "when is enrollment?" {
		t.Errorf("form = %v", out.Form)
	}
}

func TestEventValidation(t *testing.T) {
	cases := []struct {
		name string
		data string
		ok   bool
	}{
		{"dom ok", `{"type":"dom","hid":"h1","name":"click"}`, true},
		{"dom without hid", `{"type":"dom","name":"click"}`, false},
		{"dom without name", `{"type":"dom","hid":"h1"}`, false},
		{"navigate ok", `{"type":"navigate","path":"/profile"}`, true},
		{"navigate without path", `{"type":"navigate"}`, false},
		{"popstate ok", `{"type":"popstate","path":"/"}`, true},
		{"popstate without path", `{"type":"popstate"}`, false},
		{"unknown type", `{"type":"telemetry"}`, false},
		{"empty type", `{"hid":"h1"}`, false},
		{"not json", `<event>`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(tc.data))
			if tc.ok && err != nil {
				t.Errorf("err = %v, want nil", err)
			}
			if !tc.ok && !errors.Is(err, ErrBadEvent) {
				t.Errorf("err = %v, want ErrBadEvent", err)
			}
		})
	}
}

func TestEventCheckedSurvives(t *testing.T) {
	data, err := EncodeEvent(&Event{Type: EventDOM, HID: "h3", Name: "change", Checked: true})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Checked {
		t.Error("checked flag lost")
	}
}
