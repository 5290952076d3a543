package session

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces advisor snapshots inside a shared
// Redis database.
const DefaultRedisPrefix = "advisor:session:"

// redisCommands is the slice of the go-redis client the store uses.
// redis.UniversalClient satisfies it; tests substitute a fake.
type redisCommands interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd
	Pipeline() redis.Pipeliner
}

// RedisStore persists snapshots in Redis with native TTLs. Sessions
// can resume on any server that shares the database.
type RedisStore struct {
	client redisCommands
	prefix string
	closed atomic.Bool
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides DefaultRedisPrefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a store on an existing client. The client is
// shared, so Close does not close it.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Save stores a snapshot with a TTL derived from expiresAt. An already
// expired snapshot is deleted instead.
func (s *RedisStore) Save(ctx context.Context, id string, data []byte, expiresAt time.Time) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, id)
	}
	return s.client.Set(ctx, s.key(id), data, ttl).Err()
}

// Load returns the snapshot for id, or (nil, nil) when the key is
// missing. Redis expires keys itself, so no expiration check here.
func (s *RedisStore) Load(ctx context.Context, id string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete removes the snapshot for id.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return s.client.Del(ctx, s.key(id)).Err()
}

// Touch resets the TTL for id without rewriting the snapshot.
func (s *RedisStore) Touch(ctx context.Context, id string, expiresAt time.Time) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, id)
	}
	return s.client.Expire(ctx, s.key(id), ttl).Err()
}

// SaveAll writes a batch of snapshots through one pipeline round trip.
func (s *RedisStore) SaveAll(ctx context.Context, records map[string]Record) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	if len(records) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for id, rec := range records {
		if ttl := time.Until(rec.ExpiresAt); ttl > 0 {
			pipe.Set(ctx, s.key(id), rec.Data, ttl)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Close marks the store closed. The underlying client stays open for
// its other users.
func (s *RedisStore) Close() error {
	s.closed.Store(true)
	return nil
}
