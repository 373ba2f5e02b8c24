// Package classify 以語言模型將食譜分為早餐、午餐或晚餐
package classify

import (
	"context"
	"fmt"
	"strings"

	aiservice "recipe-prep/internal/core/ai/service"
	"recipe-prep/internal/core/prep"
	"recipe-prep/internal/pkg/common"

	"go.uber.org/zap"
)

// Generator 產生模型回應
type Generator interface {
	ProcessRequest(ctx context.Context, system, prompt string) (*aiservice.Response, error)
}

// Request 分類請求
type Request struct {
	CourseID    interface{} `json:"course_id"`
	Title       string      `json:"title"`
	Ingredients string      `json:"ingredients"`
	Directions  string      `json:"directions"`
	AllowMulti  bool        `json:"allow_multi"`
}

// Result 分類結果
type Result struct {
	CourseID   interface{} `json:"course_id"`
	RawOutput  string      `json:"raw_output"`
	Categories []string    `json:"categories"`
	CacheHit   bool        `json:"cache_hit"`
}

// Service 分類服務
type Service struct {
	generator Generator
}

// NewService 創建分類服務
func NewService(g Generator) *Service {
	return &Service{generator: g}
}

// Classify 對單一食譜進行分類，無法解析的輸出回傳空標籤而非錯誤
func (s *Service) Classify(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, common.NewValidationError("title is required")
	}

	prompt := BuildPrompt(req.Title, NormalizeIngredients(req.Ingredients), req.Directions)
	resp, err := s.generator.ProcessRequest(ctx, SystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("classify %v: %w", req.CourseID, err)
	}

	result := &Result{
		CourseID:   req.CourseID,
		RawOutput:  resp.Content,
		Categories: ParseCategories(resp.Content, req.AllowMulti),
		CacheHit:   resp.CacheHit,
	}

	if len(result.Categories) == 0 {
		common.LogWarn("分類結果為空",
			zap.Any("course_id", req.CourseID),
			zap.String("output", common.Preview(resp.Content, 120)),
		)
	}
	return result, nil
}

// DirectionsText 從任意形式的步驟欄位取出步驟文字
func DirectionsText(value interface{}) string {
	mapping := prep.ParseDirectionsInput(value).Mapping()
	if mapping == nil {
		return ""
	}
	v, ok := mapping.Get(prep.DirectionsKey)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
