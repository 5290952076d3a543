package session

import (
	"context"
	"errors"
	"time"
)

// ErrStoreClosed is returned for operations on a closed store.
var ErrStoreClosed = errors.New("session: store is closed")

// Store persists detached session snapshots. Implementations must be
// safe for concurrent use.
type Store interface {
	// Save persists a snapshot, overwriting any previous one for the
	// same ID. The snapshot becomes unloadable after expiresAt.
	Save(ctx context.Context, id string, data []byte, expiresAt time.Time) error

	// Load retrieves a snapshot by ID. A missing or expired snapshot
	// returns (nil, nil); errors are reserved for backend failures.
	Load(ctx context.Context, id string) ([]byte, error)

	// Delete removes a snapshot. Deleting a missing snapshot is not an
	// error.
	Delete(ctx context.Context, id string) error

	// Touch extends a snapshot's expiration without rewriting its
	// data. Touching a missing snapshot is not an error.
	Touch(ctx context.Context, id string, expiresAt time.Time) error

	// SaveAll persists a batch of snapshots, used on graceful
	// shutdown. Backends without atomic batches save sequentially.
	SaveAll(ctx context.Context, records map[string]Record) error

	// Close releases resources held by the store.
	Close() error
}

// Record is one snapshot with its expiration, as handed to SaveAll.
type Record struct {
	Data      []byte
	ExpiresAt time.Time
}
