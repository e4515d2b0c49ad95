// Package hotcache defines an optional in-process byte cache that fronts
// the persistent store for by-ID lookups. It is purely an accelerator: the
// store remains the source of record, so implementations are free to evict
// under pressure and nothing is lost on a miss.
//
// Keys are owned by scrycache (currently "card:<id>"); external code must
// not write under that prefix.
package hotcache

import (
	"context"
	"time"
)

// Cache is a minimal byte store with TTL. Implementations must be safe for
// concurrent use and byte-for-byte transparent: Get must return exactly the
// []byte previously passed to Set for the same key.
type Cache interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL, best-effort. Implementations
	// may drop the write under memory pressure. ttl <= 0 means no expiry
	// where the backend supports it.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Reset drops every entry. Called after a bulk refresh replaces the
	// underlying dataset.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close(ctx context.Context) error
}
