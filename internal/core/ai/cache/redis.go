package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"recipe-prep/internal/infrastructure/config"
	"recipe-prep/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

var _ Cache = (*RedisCache)(nil)

// RedisCache Redis 緩存服務
type RedisCache struct {
	client *redis.Client
	config *config.CacheConfig
	hits   int64
	misses int64
}

// NewRedisCache 創建 Redis 緩存並測試連接
func NewRedisCache(cfg *config.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已連線")
	return &RedisCache{
		client: client,
		config: cfg,
	}, nil
}

// Get 獲取緩存
func (s *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddInt64(&s.misses, 1)
			common.LogCacheMiss(BackendRedis)
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}

	atomic.AddInt64(&s.hits, 1)
	common.LogCacheHit(BackendRedis)
	return val, nil
}

// Set 設置緩存
func (s *RedisCache) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats 獲取緩存統計信息
func (s *RedisCache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"backend": BackendRedis,
		"addr":    s.config.RedisAddr,
		"hits":    atomic.LoadInt64(&s.hits),
		"misses":  atomic.LoadInt64(&s.misses),
	}
}

// Close 關閉 Redis 連接
func (s *RedisCache) Close() error {
	return s.client.Close()
}
