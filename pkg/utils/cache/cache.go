// Package cache defines the keyed cache used for lazily loaded documents.
package cache

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by caches without a loader for unknown keys.
var ErrCacheMiss = errors.New("cache miss")

// Cache hands out shared values by key. Values returned by Get must be
// treated as read-only by callers.
type Cache[K comparable, V any] interface {
	Get(ctx context.Context, key K) (*V, error)
	// Invalidate drops key, the next Get loads it again.
	Invalidate(ctx context.Context, key K)
	InvalidateAll(ctx context.Context)
}

// Loader produces the value of key on a cache miss.
type Loader[K comparable, V any] func(ctx context.Context, key K) (*V, error)
