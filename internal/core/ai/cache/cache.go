package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"recipe-prep/internal/infrastructure/config"
	"recipe-prep/internal/pkg/common"
)

// 後端類型
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Cache 緩存介面，未命中時回傳 common.ErrCacheMiss
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Stats() map[string]interface{}
	Close() error
}

// New 依設定建立緩存，停用時回傳 nil
func New(cfg *config.Config) (Cache, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}

	switch strings.ToLower(cfg.Cache.Backend) {
	case "", BackendMemory:
		return NewManager(&cfg.Cache), nil
	case BackendRedis:
		rc, err := NewRedisCache(&cfg.Cache)
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
}

// Key 以命名空間與內容的 SHA-256 生成緩存鍵
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%s:%s", namespace, hex.EncodeToString(h.Sum(nil)))
}
