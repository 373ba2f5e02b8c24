package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Queue       QueueConfig      `mapstructure:"queue"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Prep        PrepConfig       `mapstructure:"prep"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
	LogDir      string           `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// OpenRouterConfig OpenRouter 配置，用於食譜餐別分類
type OpenRouterConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"` // memory 或 redis
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// QueueConfig 批次處理隊列設定
type QueueConfig struct {
	Workers      int `mapstructure:"workers"`
	MaxSize      int `mapstructure:"max_size"`
	MaxBatchSize int `mapstructure:"max_batch_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// PrepConfig 食譜步驟前處理設定
type PrepConfig struct {
	DirectionsField  string `mapstructure:"directions_field"`
	HeadWindowLines  int    `mapstructure:"head_window_lines"`
	FallbackCutLines int    `mapstructure:"fallback_cut_lines"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	return Load(viper.New())
}

// Load 使用指定的 viper 實例載入設定
func Load(v *viper.Viper) (*Config, error) {
	// .env 不存在時僅使用環境變數與預設值
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string]string{
		"openrouter.enabled":  "OPENROUTER_ENABLED",
		"openrouter.api_key":  "OPENROUTER_API_KEY",
		"openrouter.model":    "OPENROUTER_MODEL",
		"openrouter.base_url": "OPENROUTER_BASE_URL",
		"cache.enabled":       "CACHE_ENABLED",
		"cache.backend":       "CACHE_BACKEND",
		"cache.redis_addr":    "REDIS_ADDR",
		"rate_limit.enabled":  "RATE_LIMIT_ENABLED",
		"rate_limit.requests": "RATE_LIMIT_REQUESTS",
		"rate_limit.window":   "RATE_LIMIT_WINDOW",
		"queue.workers":       "QUEUE_WORKERS",
		"dedup_window":        "DEDUP_WINDOW",
		"log_level":           "LOG_LEVEL",
		"log_dir":             "LOG_DIR",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-prep")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 10*1024*1024) // 10MB

	// OpenRouter 設定
	v.SetDefault("openrouter.enabled", false)
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "qwen/qwen-2.5-7b-instruct")
	v.SetDefault("openrouter.max_tokens", 96)
	v.SetDefault("openrouter.temperature", 0.0)
	v.SetDefault("openrouter.timeout", "60s")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 隊列設定
	v.SetDefault("queue.workers", 5)
	v.SetDefault("queue.max_size", 1000)
	v.SetDefault("queue.max_batch_size", 500)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 前處理設定
	v.SetDefault("prep.directions_field", "directions")
	v.SetDefault("prep.head_window_lines", 8)
	v.SetDefault("prep.fallback_cut_lines", 6)

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case "memory", "redis":
		default:
			return fmt.Errorf("invalid cache backend %q", config.Cache.Backend)
		}
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.OpenRouter.Enabled && config.OpenRouter.APIKey == "" {
		return fmt.Errorf("openrouter api key is required when classification is enabled")
	}

	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}
	if config.Queue.MaxBatchSize <= 0 {
		return fmt.Errorf("invalid queue max batch size")
	}

	if config.Prep.DirectionsField == "" {
		return fmt.Errorf("prep directions field is required")
	}
	if config.Prep.HeadWindowLines <= 0 || config.Prep.FallbackCutLines <= 0 {
		return fmt.Errorf("invalid prep line settings")
	}

	return nil
}
