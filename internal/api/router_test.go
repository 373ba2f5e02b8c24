package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	aiservice "recipe-prep/internal/core/ai/service"
	"recipe-prep/internal/core/classify"
	"recipe-prep/internal/core/directions"
	"recipe-prep/internal/core/prep"
	"recipe-prep/internal/core/queue"
	"recipe-prep/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

type stubGenerator struct {
	content string
}

func (s *stubGenerator) ProcessRequest(ctx context.Context, system, prompt string) (*aiservice.Response, error) {
	return &aiservice.Response{Content: s.content}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Version: "test"},
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 1 << 16},
		Queue:  config.QueueConfig{Workers: 2, MaxSize: 100, MaxBatchSize: 10},
		Prep:   config.PrepConfig{DirectionsField: "cooking_directions"},
		// 測試中去重時間窗很長，確保重複請求一定被擋下
		DedupWindow: time.Minute,
	}
}

func newTestRouter(t *testing.T, classifier *classify.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	processor := prep.NewProcessor(cfg.Prep.DirectionsField, directions.DefaultOptions())
	q := queue.NewManager(&cfg.Queue, processor.Handle)
	q.Start()
	t.Cleanup(q.Close)

	router, err := SetupRouter(Dependencies{
		Config:     cfg,
		Processor:  processor,
		Queue:      q,
		Classifier: classifier,
	})
	if err != nil {
		t.Fatalf("SetupRouter: %v", err)
	}
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestExtractEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	// JSON 的 \\n 解碼後為字面上的 \n，由 Python 字面值解析器轉為換行
	body := `{"course_id": 1, "cooking_directions": "{'directions': u'Prep\\n20 m\\nCook\\n1 h\\nReady In\\n1 h 40 m\\nMix.'}"}`
	w := doRequest(router, http.MethodPost, "/api/v1/directions/extract", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	want := `{"course_id":1,"cooking_directions":{"directions":"Mix."},"prep_minutes":20,"cook_minutes":60,"ready_minutes":100}`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Errorf("body = %s\nwant  %s", got, want)
	}
}

func TestExtractEndpointInvalidBody(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, body := range []string{"", "[1, 2]", "{broken"} {
		w := doRequest(router, http.MethodPost, "/api/v1/directions/extract", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestBatchEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	body := `{"records": [
		{"id": "a", "cooking_directions": "Cook\n45 mins\nSimmer."},
		{"id": "b"},
		{"id": "c", "cooking_directions": "Just stir."}
	]}`
	w := doRequest(router, http.MethodPost, "/api/v1/directions/batch", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Count   int `json:"count"`
		Failed  int `json:"failed"`
		Results []struct {
			Index  int                    `json:"index"`
			Record map[string]interface{} `json:"record"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 3 || resp.Failed != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	for i, id := range []string{"a", "b", "c"} {
		if resp.Results[i].Index != i || resp.Results[i].Record["id"] != id {
			t.Errorf("result %d out of order: %+v", i, resp.Results[i])
		}
	}
	if cook := resp.Results[0].Record["cook_minutes"]; cook != float64(45) {
		t.Errorf("cook_minutes = %v, want 45", cook)
	}
	if v, ok := resp.Results[1].Record["cooking_directions"]; !ok || v != nil {
		t.Errorf("absent directions should stay null, got %v", v)
	}
}

func TestBatchEndpointLimits(t *testing.T) {
	router := newTestRouter(t, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/directions/batch", `{"records": []}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty batch: status = %d, want 400", w.Code)
	}

	records := strings.TrimSuffix(strings.Repeat(`{"id": 1},`, 11), ",")
	w = doRequest(router, http.MethodPost, "/api/v1/directions/batch", `{"records": [`+records+`]}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized batch: status = %d, want 413", w.Code)
	}
}

func TestBodyTooLarge(t *testing.T) {
	router := newTestRouter(t, nil)

	body := `{"cooking_directions": "` + strings.Repeat("x", 1<<16) + `"}`
	w := doRequest(router, http.MethodPost, "/api/v1/directions/extract", body)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
}

func TestClassifyEndpoint(t *testing.T) {
	gen := &stubGenerator{content: `{"categories": ["Dinner", "lunch"]}`}
	router := newTestRouter(t, classify.NewService(gen))

	body := `{"course_id": 9, "title": "Stew", "ingredients": "beef^carrot", "directions": {"directions": "Simmer."}, "allow_multi": false}`
	w := doRequest(router, http.MethodPost, "/api/v1/recipe/classify", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res classify.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Categories) != 1 || res.Categories[0] != "dinner" {
		t.Errorf("Categories = %v, want [dinner]", res.Categories)
	}

	// 時間窗內的重複請求被擋下
	w = doRequest(router, http.MethodPost, "/api/v1/recipe/classify", body)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("duplicate request: status = %d, want 429", w.Code)
	}
}

func TestClassifyEndpointErrors(t *testing.T) {
	router := newTestRouter(t, nil)
	w := doRequest(router, http.MethodPost, "/api/v1/recipe/classify", `{"title": "Stew"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("disabled classifier: status = %d, want 503", w.Code)
	}

	router = newTestRouter(t, classify.NewService(&stubGenerator{}))
	w = doRequest(router, http.MethodPost, "/api/v1/recipe/classify", `{"ingredients": "egg"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing title: status = %d, want 400", w.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, nil)

	w := doRequest(router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Status string `json:"status"`
		Queue  struct {
			Workers int  `json:"workers"`
			Running bool `json:"running"`
		} `json:"queue"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Queue.Workers != 2 || !resp.Queue.Running {
		t.Errorf("unexpected health response: %s", w.Body.String())
	}

	for _, path := range []string{"/ready", "/live"} {
		if w := doRequest(router, http.MethodGet, path, ""); w.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, w.Code)
		}
	}
}
