package session

import (
	"errors"
	"testing"
	"time"
)

func TestSnapshotRoundTrip(t *testing.T) {
	in := &Snapshot{
		ID:          "sess-1",
		CreatedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		LastActive:  time.Date(2025, 3, 1, 10, 5, 0, 0, time.UTC),
		Route:       "/qa",
		RouteParams: map[string]string{"topic": "enrollment"},
		Seq:         17,
	}
	if err := in.SetValue("draftQuestion", "when is add/drop?"); err != nil {
		t.Fatalf("setvalue: %v", err)
	}

	data, err := EncodeSnapshot(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if out.ID != "sess-1" || out.Route != "/qa" || out.Seq != 17 {
		t.Errorf("got %+v", out)
	}
	if out.RouteParams["topic"] != "enrollment" {
		t.Errorf("params = %v", out.RouteParams)
	}
	if out.Version != SnapshotVersion {
		t.Errorf("version = %d, want %d", out.Version, SnapshotVersion)
	}

	var draft string
	ok, err := out.Value("draftQuestion", &draft)
	if err != nil || !ok {
		t.Fatalf("value: ok=%v err=%v", ok, err)
	}
	if draft != "when is add/drop?" {
		t.Errorf("draft = %q", draft)
	}
}

func TestSnapshotValueMissing(t *testing.T) {
	s := &Snapshot{ID: "sess-1"}
	var out string
	ok, err := s.Value("nope", &out)
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if ok {
		t.Error("missing key reported present")
	}
}

func TestDecodeSnapshotRejects(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"missing version", `{"id":"s1"}`},
		{"future version", `{"id":"s1","version":99}`},
		{"missing id", `{"version":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeSnapshot([]byte(tc.data)); !errors.Is(err, ErrBadSnapshot) {
				t.Errorf("err = %v, want ErrBadSnapshot", err)
			}
		})
	}
}
