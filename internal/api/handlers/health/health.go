package health

import (
	"net/http"
	"runtime"
	"time"

	"recipe-prep/internal/core/ai/cache"
	"recipe-prep/internal/core/queue"
	"recipe-prep/internal/infrastructure/config"
	"recipe-prep/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context 鍵
const (
	ConfigKey = "config"
	QueueKey  = "queue_manager"
	CacheKey  = "cache"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	cfg, ok := value(c, ConfigKey).(*config.Config)
	if !ok {
		common.LogError("Configuration not found in context")
		ce := common.ErrInternalError
		c.JSON(ce.Status, ce.Response(false))
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if qm, ok := value(c, QueueKey).(*queue.Manager); ok && qm != nil {
		response.Queue = qm.GetQueueStatus()
		if !response.Queue.Running {
			response.Status = "degraded"
		}
	}
	if cm, ok := value(c, CacheKey).(cache.Cache); ok && cm != nil {
		response.Cache = cm.Stats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，隊列未運行時回傳 503
func ReadinessCheck(c *gin.Context) {
	if qm, ok := value(c, QueueKey).(*queue.Manager); ok && qm != nil {
		if status := qm.GetQueueStatus(); !status.Running {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"reason": "queue not running",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func value(c *gin.Context, key string) interface{} {
	v, _ := c.Get(key)
	return v
}
