package db

import (
	"context"
	"time"
)

// Store is the key-value facade the caches depend on. Two implementations
// exist: the shared Redis store and the process-local fallback. Consumers
// use the narrow sub-interfaces.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides the key-value operations the response cache needs.
// Get returns ErrKeyNotFound for missing or expired keys.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	DeleteMatching(ctx context.Context, prefix string) (int, error)
}
