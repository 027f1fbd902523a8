// Package cache stores rendered PDF bytes so that converting an unchanged
// SVG a second time can skip the renderer.
//
// Three implementations are provided:
//   - [FileCache]: one file per entry under a local directory (CLI default)
//   - [RedisCache]: a shared cache backed by Redis
//   - [NullCache]: never stores anything (--no-cache)
//
// Keys are built with [RenderKey] from the SVG content, the DPI and the
// backend name, so a changed input, DPI or backend never hits a stale entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional per-entry expiration.
// A ttl of zero means the entry does not expire.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
