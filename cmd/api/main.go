package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-prep/internal/api"
	"recipe-prep/internal/core/ai/cache"
	"recipe-prep/internal/core/ai/openrouter"
	aiservice "recipe-prep/internal/core/ai/service"
	"recipe-prep/internal/core/classify"
	"recipe-prep/internal/core/directions"
	"recipe-prep/internal/core/prep"
	"recipe-prep/internal/core/queue"
	"recipe-prep/internal/infrastructure/config"
	"recipe-prep/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("openrouter_api_key", config.MaskAPIKey(cfg.OpenRouter.APIKey)),
		zap.String("openrouter_model", cfg.OpenRouter.Model),
		zap.String("directions_field", cfg.Prep.DirectionsField),
	)

	cacheStore, err := cache.New(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	if cacheStore != nil {
		defer cacheStore.Close()
	}

	processor := prep.NewProcessor(cfg.Prep.DirectionsField, directions.Options{
		HeadWindowLines:  cfg.Prep.HeadWindowLines,
		FallbackCutLines: cfg.Prep.FallbackCutLines,
	})

	queueManager := queue.NewManager(&cfg.Queue, processor.Handle)
	queueManager.Start()
	defer queueManager.Close()

	var classifier *classify.Service
	if cfg.OpenRouter.Enabled {
		client := openrouter.NewClient(&cfg.OpenRouter)
		defer client.Close()
		classifier = classify.NewService(aiservice.NewService(&cfg.OpenRouter, client, cacheStore))
	} else {
		common.LogInfo("OpenRouter disabled, classification endpoint unavailable")
	}

	router, err := api.SetupRouter(api.Dependencies{
		Config:     cfg,
		Processor:  processor,
		Queue:      queueManager,
		Classifier: classifier,
		Cache:      cacheStore,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
