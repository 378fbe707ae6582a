package cache

import (
	"context"
	"time"

	"github.com/matzehuels/bookplot/pkg/observability"
)

// Instrumented reports hits, misses and writes of c to the registered
// [observability.CacheHooks], labelled by [KeyType].
func Instrumented(c Cache) Cache {
	if c == nil {
		return NewNullCache()
	}
	return &instrumented{Cache: c}
}

type instrumented struct{ Cache }

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}
