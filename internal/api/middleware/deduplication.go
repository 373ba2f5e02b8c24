package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"recipe-prep/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// defaultDedupWindow 未設定時的去重時間窗
const defaultDedupWindow = time.Second

// requestCache 請求指紋與最後出現時間
type requestCache struct {
	mu        sync.Mutex
	requests  map[string]time.Time
	window    time.Duration
	lastPrune time.Time
}

// seen 記錄指紋，時間窗內重複出現時回傳 true
func (rc *requestCache) seen(fingerprint string, now time.Time) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	// 定期清理過期指紋
	if now.Sub(rc.lastPrune) > 10*rc.window {
		for k, t := range rc.requests {
			if now.Sub(t) > rc.window {
				delete(rc.requests, k)
			}
		}
		rc.lastPrune = now
	}

	if last, exists := rc.requests[fingerprint]; exists && now.Sub(last) <= rc.window {
		return true
	}
	rc.requests[fingerprint] = now
	return false
}

// Deduplication 請求去重中間件，時間窗內相同 POST 內容回傳 429
func Deduplication(window time.Duration) gin.HandlerFunc {
	if window <= 0 {
		window = defaultDedupWindow
	}
	cache := &requestCache{
		requests:  make(map[string]time.Time),
		window:    window,
		lastPrune: time.Now(),
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}

			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		fingerprint := c.Request.Method + ":" + c.Request.URL.Path
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		if cache.seen(fingerprint, time.Now()) {
			ce := common.ErrTooManyRequests
			c.AbortWithStatusJSON(ce.Status, ce.Response(false))
			return
		}

		c.Next()
	}
}
