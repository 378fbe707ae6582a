// Package cache stores fit results and rendered plots between runs.
//
// A [Cache] is a byte store with per-entry expiry. Three backends exist:
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis server, for the API
//   - [NullCache]: stores nothing, for --no-cache
//
// Keys are built by a [Keyer] from a hash of the inputs and every option that
// affects the output, so changing a plot setting never returns a stale image.
//
//	k := cache.NewDefaultKeyer()
//	key := k.FitKey(cache.HashJSON(samples), cache.FitKeyOpts{MaxIterations: 10000})
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    ...
//	}
package cache

import (
	"context"
	"time"
)

// Default lifetimes. Fits are deterministic, so they live longest.
const (
	FitTTL      = 30 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a key-value byte store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
