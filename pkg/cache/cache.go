// Package cache provides the caching layer for keyplate's pipeline.
//
// Parsing a layout and deriving a plate are cheap on their own, but the CLI
// batch command and the HTTP server see the same layouts over and over. The
// pipeline stores each stage's output under a content-addressed key so a
// repeated request costs one lookup.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [MemoryCache]: process memory, for a single server without Redis
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// # Keys
//
// A [Keyer] builds keys from a hash of the stage input plus every option
// that changes the stage output. [ScopedKeyer] prefixes every key so several
// deployments can share one Redis database.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get returns (nil, false, nil) on a miss. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Time-to-live for each cached stage.
const (
	TTLLayout   = 7 * 24 * time.Hour // interpreted key placements
	TTLPlate    = 7 * 24 * time.Hour // derived plate geometry
	TTLArtifact = 24 * time.Hour     // encoded output files
)
