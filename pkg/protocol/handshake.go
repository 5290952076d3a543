package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the protocol version. A client built against a different
// version is told to reload rather than limp along.
const Version = 1

// ErrBadHandshake is returned for a handshake payload that does not
// parse or fails validation.
var ErrBadHandshake = errors.New("protocol: malformed handshake")

// HandshakeStatus is the server's verdict on a ClientHello.
type HandshakeStatus string

const (
	// HandshakeOK means a fresh session was created.
	HandshakeOK HandshakeStatus = "ok"
	// HandshakeResumed means the requested session was still alive and
	// the socket is now attached to it.
	HandshakeResumed HandshakeStatus = "resumed"
	// HandshakeExpired means the requested session is gone; the client
	// got a fresh one and should reload to re-sync the DOM.
	HandshakeExpired HandshakeStatus = "expired"
	// HandshakeVersionMismatch tells the client to reload for a new
	// client build.
	HandshakeVersionMismatch HandshakeStatus = "version_mismatch"
	// HandshakeRejected covers CSRF failures and refused connections.
	HandshakeRejected HandshakeStatus = "rejected"
)

// ClientHello is the first frame on a fresh socket.
type ClientHello struct {
	Version   int    `json:"v"`
	SessionID string `json:"session,omitempty"`
	CSRFToken string `json:"csrf,omitempty"`
	LastSeq   uint64 `json:"lastSeq,omitempty"`
	Path      string `json:"path"`
}

// ServerHello answers a ClientHello.
type ServerHello struct {
	Status    HandshakeStatus `json:"status"`
	SessionID string          `json:"session,omitempty"`
	Seq       uint64          `json:"seq,omitempty"`
	Time      int64           `json:"time,omitempty"`
}

// EncodeClientHello returns the JSON payload for a handshake frame.
func EncodeClientHello(ch *ClientHello) ([]byte, error) {
	return json.Marshal(ch)
}

// DecodeClientHello parses and validates a handshake payload.
func DecodeClientHello(data []byte) (*ClientHello, error) {
	var ch ClientHello
	if err := json.Unmarshal(data, &ch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHandshake, err)
	}
	if ch.Version <= 0 {
		return nil, fmt.Errorf("%w: missing version", ErrBadHandshake)
	}
	return &ch, nil
}

// EncodeServerHello returns the JSON payload for the reply frame.
func EncodeServerHello(sh *ServerHello) ([]byte, error) {
	return json.Marshal(sh)
}

// DecodeServerHello parses a server handshake payload.
func DecodeServerHello(data []byte) (*ServerHello, error) {
	var sh ServerHello
	if err := json.Unmarshal(data, &sh); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHandshake, err)
	}
	if sh.Status == "" {
		return nil, fmt.Errorf("%w: missing status", ErrBadHandshake)
	}
	return &sh, nil
}
