package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/ghrelease/cacheapi"
	cachewrap "github.com/xxxsen/ghrelease/cacheapi/adaptor"
	"github.com/xxxsen/ghrelease/kvstore"
)

const (
	defaultMaxKVCacheSize    = 1024
	defaultKVCacheExpireTime = 10 * time.Minute
)

type kvDao struct {
	kvstore.IKVStore
	cache cacheapi.ICache[string, string]
}

func NewKVDao(impl kvstore.IKVStore) kvstore.IKVStore {
	cc := lru.NewLRU[string, string](defaultMaxKVCacheSize, nil, defaultKVCacheExpireTime)
	return &kvDao{
		IKVStore: impl,
		cache:    cachewrap.WrapExpirableLruCache(cc),
	}
}

func (k *kvDao) Get(ctx context.Context, key string) (string, bool, error) {
	return cacheapi.Load(ctx, k.cache, key, k.IKVStore.Get)
}

func (k *kvDao) Set(ctx context.Context, key string, value string) error {
	defer k.cache.Del(ctx, key)
	return k.IKVStore.Set(ctx, key, value)
}

func (k *kvDao) Del(ctx context.Context, key string) error {
	defer k.cache.Del(ctx, key)
	return k.IKVStore.Del(ctx, key)
}
