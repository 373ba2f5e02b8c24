package api

import (
	"fmt"
	"time"

	classifyHandler "recipe-prep/internal/api/handlers/classify"
	directionsHandler "recipe-prep/internal/api/handlers/directions"
	"recipe-prep/internal/api/handlers/health"
	"recipe-prep/internal/api/middleware"
	"recipe-prep/internal/core/ai/cache"
	"recipe-prep/internal/core/classify"
	"recipe-prep/internal/core/prep"
	"recipe-prep/internal/core/queue"
	"recipe-prep/internal/infrastructure/config"
	"recipe-prep/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由所需的服務
type Dependencies struct {
	Config     *config.Config
	Processor  *prep.Processor
	Queue      *queue.Manager
	Classifier *classify.Service // 可為 nil
	Cache      cache.Cache       // 可為 nil
}

// SetupRouter 設置路由
func SetupRouter(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Processor == nil || deps.Queue == nil {
		return nil, fmt.Errorf("processor and queue are required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 注入健康檢查所需的服務
	router.Use(func(c *gin.Context) {
		c.Set(health.ConfigKey, cfg)
		c.Set(health.QueueKey, deps.Queue)
		if deps.Cache != nil {
			c.Set(health.CacheKey, deps.Cache)
		}
		c.Next()
	})

	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	{
		dh := directionsHandler.NewHandler(deps.Processor, deps.Queue, cfg.App.Debug)
		directionsGroup := api.Group("/directions")
		{
			directionsGroup.POST("/extract", dh.HandleExtract)
			directionsGroup.POST("/batch", dh.HandleBatch)
		}

		ch := classifyHandler.NewHandler(deps.Classifier, cfg.App.Debug)
		recipeGroup := api.Group("/recipe")
		recipeGroup.Use(middleware.Deduplication(cfg.DedupWindow))
		{
			recipeGroup.POST("/classify", ch.HandleClassify)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("classifier_enabled", deps.Classifier != nil),
		zap.Bool("cache_enabled", deps.Cache != nil),
		zap.Int("queue_workers", cfg.Queue.Workers),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
