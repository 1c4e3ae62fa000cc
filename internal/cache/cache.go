// Package cache provides the shared TTL key-value store backing the
// market data gateway's cache-aside pipeline. Two implementations
// exist: an in-process map store (the default) and a Redis-backed
// store for multi-instance deployments. Both have atomic put-by-key
// semantics; expired entries are treated as absent, never as stale.
package cache

import (
	"context"
	"time"
)

// Store is a key-value store with per-entry TTL expiry.
type Store interface {
	// Get returns the payload stored under key, or ok=false when the
	// key is absent or its TTL has elapsed.
	Get(ctx context.Context, key string) (value []byte, ok bool)
	// Set stores value under key for ttl. A ttl <= 0 is a no-op.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Delete removes key if present.
	Delete(ctx context.Context, key string)
}
