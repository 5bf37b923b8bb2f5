// Package cache provides a small byte cache for rendered map artifacts.
//
// Rendering SVG through Graphviz is the slowest operation in the tool, and
// exporting the same map twice is common (the HTTP view serves /map.svg on
// every refresh). Renders are cached under a key derived from the DOT
// source, so any change to the map produces a new key and stale entries
// simply expire.
//
// Implementations:
//   - [FileCache]: entries as JSON files under the user cache directory
//   - [NullCache]: never stores anything (--no-cache)
//
// Wrap either with [Instrument] to report hits and misses through
// [github.com/matzehuels/mindcraft/pkg/observability].
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/mindcraft/pkg/observability"
)

// Cache stores opaque byte values by string key.
type Cache interface {
	// Get returns the value for key. The boolean is false on a miss,
	// including for expired entries.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// instrumented reports cache traffic to the registered CacheHooks.
type instrumented struct {
	Cache
	keyType string
}

// Instrument wraps c so that every Get and Set is reported to
// observability.Cache() under keyType.
func Instrument(c Cache, keyType string) Cache {
	return &instrumented{Cache: c, keyType: keyType}
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, c.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, c.keyType)
		}
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, c.keyType, len(data))
	return nil
}
