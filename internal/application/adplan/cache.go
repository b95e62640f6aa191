package adplan

import (
	"context"
	"time"
)

const (
	generationCacheKeyPrefix = "adwise:generation:"
	generationCacheTTL       = 30 * time.Second
)

// KVCache 应用层对缓存的最小依赖，由 Redis 实现注入
type KVCache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
}

func generationCacheKey(id string) string {
	return generationCacheKeyPrefix + id
}
