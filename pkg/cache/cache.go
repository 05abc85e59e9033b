// Package cache stores engine results keyed by content hashes.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis server, for the HTTP API
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// # Keys
//
// A [Keyer] derives keys from diagram fingerprints and the options that
// influence a result. Two requests that would compute the same grid or the
// same cover map to the same key. [ScopedKeyer] prefixes every key, which
// lets several tenants share one Redis database.
//
// # Trust
//
// Cached covers are certificates and are verified again before use (see
// pipeline.Runner.Check). The cache itself does not interpret entries.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live per entry kind.
const (
	TTLLayout = 30 * 24 * time.Hour
	TTLCheck  = 7 * 24 * time.Hour
	TTLRender = 30 * 24 * time.Hour
)
