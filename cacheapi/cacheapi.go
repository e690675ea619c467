package cacheapi

import (
	"context"
	"errors"
)

var (
	ErrCacheKeyNotExist = errors.New("cache key not exist")
)

type ICacheGetter[K comparable, V any] interface {
	Get(ctx context.Context, k K) (V, error)
}

type ICacheSetter[K comparable, V any] interface {
	Set(ctx context.Context, k K, v V) error
}

type ICacheDeleter[K comparable] interface {
	Del(ctx context.Context, k K) error
}

type ICache[K comparable, V any] interface {
	ICacheGetter[K, V]
	ICacheSetter[K, V]
	ICacheDeleter[K]
}

// LoadCallbackFunc fetches a missing key from the source, ok=false means the source has no such key.
type LoadCallbackFunc[K comparable, V any] func(ctx context.Context, k K) (V, bool, error)

// Load reads k through c, filling the cache from cb on a miss. Absent keys are not cached.
func Load[K comparable, V any](ctx context.Context, c ICache[K, V], k K, cb LoadCallbackFunc[K, V]) (V, bool, error) {
	v, err := c.Get(ctx, k)
	if err == nil {
		return v, true, nil
	}
	if !errors.Is(err, ErrCacheKeyNotExist) {
		return v, false, err
	}
	v, ok, err := cb(ctx, k)
	if err != nil || !ok {
		return v, false, err
	}
	_ = c.Set(ctx, k, v)
	return v, true, nil
}
