package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SnapshotVersion is the current snapshot format version. Bump on
// breaking changes; Decode rejects versions it does not know.
const SnapshotVersion = 1

// ErrBadSnapshot is returned for snapshot bytes that do not parse or
// carry an unknown format version.
var ErrBadSnapshot = errors.New("session: malformed snapshot")

// Snapshot is the serialized state of a detached session. It carries
// enough to put a resumed session back on the page it was showing with
// the values it had accumulated.
type Snapshot struct {
	// ID is the session identifier the snapshot belongs to.
	ID string `json:"id"`

	// CreatedAt and LastActive preserve the session's age across a
	// resume.
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`

	// Route is the path the session was rendering, with its matched
	// parameters.
	Route       string            `json:"route,omitempty"`
	RouteParams map[string]string `json:"routeParams,omitempty"`

	// Values holds the session's stored values, each already
	// marshaled by its owner.
	Values map[string]json.RawMessage `json:"values,omitempty"`

	// Seq is the last patch sequence the client acknowledged.
	Seq uint64 `json:"seq,omitempty"`

	// Version is the snapshot format version.
	Version int `json:"version"`
}

// EncodeSnapshot serializes a snapshot, stamping the current format
// version.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	s.Version = SnapshotVersion
	return json.Marshal(s)
}

// DecodeSnapshot parses snapshot bytes written by EncodeSnapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if s.Version <= 0 || s.Version > SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, s.Version)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrBadSnapshot)
	}
	return &s, nil
}

// SetValue marshals v into the snapshot's value map.
func (s *Snapshot) SetValue(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if s.Values == nil {
		s.Values = make(map[string]json.RawMessage)
	}
	s.Values[key] = data
	return nil
}

// Value unmarshals the named value into out. It reports whether the
// key was present.
func (s *Snapshot) Value(key string, out any) (bool, error) {
	raw, ok := s.Values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}
