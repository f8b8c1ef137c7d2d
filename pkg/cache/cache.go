// Package cache provides the byte cache behind oracle response caching.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for `conceptmap serve` deployments
//   - [NullCache]: caching disabled
//
// Keys are built with [Key], which hashes its parts so that arbitrarily
// long prompts and documents map to fixed-size keys.
package cache

import (
	"context"
	"time"
)

// TTLOracle is how long a cached oracle response stays valid.
const TTLOracle = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the cached value. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes the entry if present.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
