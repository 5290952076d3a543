package protocol

import (
	"errors"
	"testing"
)

func TestClientHelloRoundTrip(t *testing.T) {
	in := &ClientHello{
		Version:   Version,
		SessionID: "sess-abc",
		CSRFToken: "tok-1",
		LastSeq:   12,
		Path:      "/qa",
	}
	data, err := EncodeClientHello(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeClientHello(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *out != *in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestClientHelloValidation(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "{nope"},
		{"missing version", `{"path":"/"}`},
		{"zero version", `{"v":0,"path":"/"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeClientHello([]byte(tc.data)); !errors.Is(err, ErrBadHandshake) {
				t.Errorf("err = %v, want ErrBadHandshake", err)
			}
		})
	}
}

func TestServerHelloRoundTrip(t *testing.T) {
	in := &ServerHello{Status: HandshakeResumed, SessionID: "sess-abc", Seq: 12, Time: 1700000000}
	data, err := EncodeServerHello(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeServerHello(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *out != *in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestServerHelloRequiresStatus(t *testing.T) {
	if _, err := DecodeServerHello([]byte(`{"session":"s"}`)); !errors.Is(err, ErrBadHandshake) {
		t.Errorf("err = %v, want ErrBadHandshake", err)
	}
}
