package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipe-prep/internal/core/ai/cache"
	"recipe-prep/internal/core/ai/provider"
	"recipe-prep/internal/infrastructure/config"
	"recipe-prep/internal/pkg/common"

	"go.uber.org/zap"
)

// Response AI 回應結構
type Response struct {
	Content  string `json:"content"`
	Model    string `json:"model"`
	CacheHit bool   `json:"cache_hit"`
}

// Service AI 服務，負責緩存與呼叫提供者
type Service struct {
	config   *config.OpenRouterConfig
	provider provider.Provider
	cache    cache.Cache
}

// NewService 創建 AI 服務，cache 可為 nil
func NewService(cfg *config.OpenRouterConfig, p provider.Provider, c cache.Cache) *Service {
	return &Service{
		config:   cfg,
		provider: p,
		cache:    c,
	}
}

// ProcessRequest 統一對外方法
func (s *Service) ProcessRequest(ctx context.Context, system, prompt string) (*Response, error) {
	if s.provider == nil {
		return nil, common.ErrAIDisabled
	}

	// 統一 prompt 空白，確保快取 key 一致
	normalized := strings.Join(strings.Fields(prompt), " ")
	key := cache.Key("ai:response", s.provider.GetModel(), system, normalized)

	if s.cache != nil {
		if val, err := s.cache.Get(ctx, key); err == nil && val != "" {
			return &Response{Content: val, Model: s.provider.GetModel(), CacheHit: true}, nil
		} else if err != nil && !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取快取失敗", zap.Error(err))
		}
	}

	req := &provider.Request{
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: system},
			{Role: provider.RoleUser, Content: prompt},
		},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, req)
	common.LogAICall(s.provider.GetModel(), time.Since(start), err, requestID(ctx))
	if err != nil {
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("generate: %w", err))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp.Content); err != nil {
			common.LogWarn("寫入快取失敗", zap.Error(err))
		}
	}

	return &Response{Content: resp.Content, Model: resp.Model}, nil
}

type ctxKey struct{}

// WithRequestID 將請求 ID 放入 context 供日誌使用
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
