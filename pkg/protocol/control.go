package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrBadControl is returned for a control payload that does not parse.
var ErrBadControl = errors.New("protocol: malformed control message")

// ControlOp is a control message operation.
type ControlOp string

const (
	// ControlPing and ControlPong carry the application-level
	// keepalive. Browsers cannot send WebSocket protocol pings from
	// script, so the client pings through a control frame instead.
	ControlPing ControlOp = "ping"
	ControlPong ControlOp = "pong"

	// ControlResync asks the server for a full tree replacement, used
	// when the client detects it lost patches.
	ControlResync ControlOp = "resync"
)

// Control is a ping, pong, or resync request.
type Control struct {
	Op  ControlOp `json:"op"`
	Seq uint64    `json:"seq,omitempty"`
}

// EncodeControl returns the JSON payload for a control frame.
func EncodeControl(c *Control) ([]byte, error) {
	return json.Marshal(c)
}

// DecodeControl parses and validates a control payload.
func DecodeControl(data []byte) (*Control, error) {
	var c Control
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadControl, err)
	}
	switch c.Op {
	case ControlPing, ControlPong, ControlResync:
		return &c, nil
	default:
		return nil, fmt.Errorf("%w: unknown op %q", ErrBadControl, c.Op)
	}
}
