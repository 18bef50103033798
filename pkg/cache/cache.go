// Package cache provides result caching for tile calculations.
//
// A [Cache] stores opaque bytes under string keys. A [Keyer] derives those
// keys from the calculation inputs, so equal inputs always hit the same
// entry. Three backends are available:
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: a shared Redis instance, for the server
//   - [NullCache]: caching disabled
//
// Cache failures never fail a calculation; callers log and recompute.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Entry lifetimes.
const (
	// TTLRecord is the lifetime of a computed calculation record.
	// Records are pure functions of their inputs, so they can live long.
	TTLRecord = 30 * 24 * time.Hour

	// TTLArtifact is the lifetime of a rendered layout drawing.
	TTLArtifact = 7 * 24 * time.Hour
)
