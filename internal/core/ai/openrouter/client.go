package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"recipe-prep/internal/core/ai/provider"
	"recipe-prep/internal/infrastructure/config"
	"recipe-prep/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var _ provider.Provider = (*Client)(nil)

// Client OpenRouter API 客戶端
type Client struct {
	config *config.OpenRouterConfig
	client *resty.Client
}

// chatRequest OpenRouter chat/completions 請求
type chatRequest struct {
	Model       string             `json:"model"`
	Messages    []provider.Message `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float64            `json:"temperature"`
	Stop        []string           `json:"stop,omitempty"`
}

// chatResponse OpenRouter 響應結構
type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message provider.Message `json:"message"`
	} `json:"choices"`
	Usage provider.Usage `json:"usage"`
}

// apiError OpenRouter 錯誤結構
type apiError struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg *config.OpenRouterConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("HTTP-Referer", "https://recipe-prep.local").
		SetHeader("X-Title", "Recipe Prep")

	return &Client{
		config: cfg,
		client: client,
	}
}

// Generate 發送對話請求並回傳第一個選項的內容
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := chatRequest{
		Model:       c.config.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stop:        req.Stop,
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = c.config.MaxTokens
	}

	common.LogDebug("Sending request to OpenRouter",
		zap.String("model", body.Model),
		zap.Int("messages", len(body.Messages)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("OpenRouter API returned error (status %d): %s", resp.StatusCode(), errorMessage(resp.Body()))
	}

	var result chatResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenRouter response")
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("empty content in OpenRouter response")
	}

	model := result.Model
	if model == "" {
		model = body.Model
	}
	return &provider.Response{
		Content: content,
		Model:   model,
		Usage:   result.Usage,
	}, nil
}

// errorMessage 盡量取出 API 錯誤訊息
func errorMessage(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return common.Preview(string(body), 200)
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.config.Model
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
