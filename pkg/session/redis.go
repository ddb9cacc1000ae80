package session

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// RedisStorage is a Redis-backed Storage.
// It lets several console processes share one session.
type RedisStorage struct {
	client redis.UniversalClient
	prefix string
	owned  bool
	closed atomic.Bool
}

// RedisStorageOption configures RedisStorage behavior.
type RedisStorageOption func(*RedisStorage)

// WithRedisPrefix sets the key prefix for session keys.
// Default: "sss:console:".
func WithRedisPrefix(prefix string) RedisStorageOption {
	return func(r *RedisStorage) {
		r.prefix = prefix
	}
}

// WithOwnedClient makes Close also close the underlying client.
func WithOwnedClient() RedisStorageOption {
	return func(r *RedisStorage) {
		r.owned = true
	}
}

// NewRedisStorage creates a Redis-backed storage on top of client.
func NewRedisStorage(client redis.UniversalClient, opts ...RedisStorageOption) *RedisStorage {
	r := &RedisStorage{
		client: client,
		prefix: "sss:console:",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisStorage) key(k string) string {
	return r.prefix + k
}

// Get returns the value stored under key.
func (r *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if r.closed.Load() {
		return "", false, ErrStorageClosed
	}

	v, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key without expiry.
func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if r.closed.Load() {
		return ErrStorageClosed
	}
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

// Delete removes key.
func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if r.closed.Load() {
		return ErrStorageClosed
	}
	return r.client.Del(ctx, r.key(key)).Err()
}

// Close marks the storage closed.
// The client is only closed when created WithOwnedClient.
func (r *RedisStorage) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	if r.owned {
		return r.client.Close()
	}
	return nil
}

// Prefix returns the current key prefix.
// This is for testing/debugging purposes.
func (r *RedisStorage) Prefix() string {
	return r.prefix
}
