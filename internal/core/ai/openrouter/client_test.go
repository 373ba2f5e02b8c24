package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recipe-prep/internal/core/ai/provider"
	"recipe-prep/internal/infrastructure/config"
)

func newTestClient(url string) *Client {
	return NewClient(&config.OpenRouterConfig{
		APIKey:    "sk-test",
		BaseURL:   url,
		Model:     "test/model",
		MaxTokens: 64,
		Timeout:   5 * time.Second,
	})
}

func TestGenerate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","model":"test/model","choices":[{"message":{"role":"assistant","content":"  {\"categories\": [\"lunch\"]}  "}}],"usage":{"total_tokens":12}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	defer c.Close()

	resp, err := c.Generate(context.Background(), &provider.Request{
		Messages: []provider.Message{{Role: provider.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Content != `{"categories": ["lunch"]}` {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 12 {
		t.Errorf("TotalTokens = %d", resp.Usage.TotalTokens)
	}
	if got.Model != "test/model" || got.MaxTokens != 64 {
		t.Errorf("request = %+v", got)
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"auth"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), &provider.Request{})
	if err == nil || !strings.Contains(err.Error(), "bad key") {
		t.Fatalf("expected API error message, got %v", err)
	}
}

func TestGenerateNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Generate(context.Background(), &provider.Request{}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
