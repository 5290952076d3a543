package protocol

import "encoding/json"

// ErrorCode classifies an error frame.
type ErrorCode string

const (
	ErrCodeBadFrame       ErrorCode = "bad_frame"
	ErrCodeBadEvent       ErrorCode = "bad_event"
	ErrCodeSessionExpired ErrorCode = "session_expired"
	ErrCodeNavigation     ErrorCode = "navigation_failed"
	ErrCodeRateLimited    ErrorCode = "rate_limited"
	ErrCodeInternal       ErrorCode = "internal"
)

// ErrorFrame reports a server-side failure to the client. Fatal errors
// mean the socket is about to close and the client should reload
// rather than reconnect.
type ErrorFrame struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message,omitempty"`
	Fatal   bool      `json:"fatal,omitempty"`
}

// EncodeError returns the JSON payload for an error frame.
func EncodeError(ef *ErrorFrame) ([]byte, error) {
	return json.Marshal(ef)
}

// DecodeError parses an error payload.
func DecodeError(data []byte) (*ErrorFrame, error) {
	var ef ErrorFrame
	if err := json.Unmarshal(data, &ef); err != nil {
		return nil, err
	}
	return &ef, nil
}
