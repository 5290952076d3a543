package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps snapshots in process memory. It is the default
// store and fits single-server deployments; sessions do not survive a
// restart. A background janitor drops expired snapshots.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
	closed  bool
	done    chan struct{}
}

type memoryRecord struct {
	data      []byte
	expiresAt time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	sweepInterval time.Duration
}

// WithSweepInterval sets how often expired snapshots are dropped.
// Default: one minute.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		c.sweepInterval = d
	}
}

// NewMemoryStore creates an in-memory store and starts its janitor.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	cfg := &memoryConfig{sweepInterval: time.Minute}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &MemoryStore{
		records: make(map[string]*memoryRecord),
		done:    make(chan struct{}),
	}
	go s.sweepLoop(cfg.sweepInterval)
	return s
}

// Save stores a snapshot under id until expiresAt.
func (s *MemoryStore) Save(ctx context.Context, id string, data []byte, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	// Copied so the caller's buffer stays independent.
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	s.records[id] = &memoryRecord{data: dataCopy, expiresAt: expiresAt}
	return nil
}

// Load returns the snapshot for id, or (nil, nil) when missing or
// expired.
func (s *MemoryStore) Load(ctx context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rec, ok := s.records[id]
	if !ok || time.Now().After(rec.expiresAt) {
		return nil, nil
	}

	dataCopy := make([]byte, len(rec.data))
	copy(dataCopy, rec.data)
	return dataCopy, nil
}

// Delete removes the snapshot for id.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	delete(s.records, id)
	return nil
}

// Touch extends the expiration for id if it exists.
func (s *MemoryStore) Touch(ctx context.Context, id string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if rec, ok := s.records[id]; ok {
		rec.expiresAt = expiresAt
	}
	return nil
}

// SaveAll stores a batch of snapshots under one lock acquisition.
func (s *MemoryStore) SaveAll(ctx context.Context, records map[string]Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	for id, rec := range records {
		dataCopy := make([]byte, len(rec.Data))
		copy(dataCopy, rec.Data)
		s.records[id] = &memoryRecord{data: dataCopy, expiresAt: rec.ExpiresAt}
	}
	return nil
}

// Close stops the janitor and drops all snapshots.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	close(s.done)
	s.records = nil
	return nil
}

// Count reports the number of stored snapshots, expired ones included
// until the janitor runs. Used by tests and stats endpoints.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	now := time.Now()
	for id, rec := range s.records {
		if now.After(rec.expiresAt) {
			delete(s.records, id)
		}
	}
}
