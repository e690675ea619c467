package github

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	explru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/ghrelease/cacheapi"
	cachewrap "github.com/xxxsen/ghrelease/cacheapi/adaptor"
)

const (
	CacheKindRistretto = "ristretto"
	CacheKindLru       = "lru"
	CacheKindNone      = "none"
)

// NewCache builds the response cache, size is the max item count.
// A non positive ttl keeps items until they are evicted.
func NewCache(kind string, size int, ttl time.Duration) (cacheapi.ICache[string, []byte], error) {
	if size <= 0 {
		size = 256
	}
	switch kind {
	case "", CacheKindRistretto:
		cc, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
			NumCounters: int64(size) * 10,
			MaxCost:     int64(size),
			BufferItems: 64,
			// cost is the item count, see WrapRistrettoCache
			IgnoreInternalCost: true,
		})
		if err != nil {
			return nil, fmt.Errorf("create ristretto cache failed, err:%w", err)
		}
		return cachewrap.WrapRistrettoCache(cc, ttl), nil
	case CacheKindLru:
		if ttl <= 0 {
			cc, err := lru.New[string, []byte](size)
			if err != nil {
				return nil, fmt.Errorf("create lru cache failed, err:%w", err)
			}
			return cachewrap.WrapLruCache(cc), nil
		}
		return cachewrap.WrapExpirableLruCache(explru.NewLRU[string, []byte](size, nil, ttl)), nil
	case CacheKindNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache kind:%s", kind)
	}
}
