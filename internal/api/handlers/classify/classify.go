package classify

import (
	"net/http"

	"recipe-prep/internal/api/handlers"
	aiservice "recipe-prep/internal/core/ai/service"
	"recipe-prep/internal/core/classify"
	"recipe-prep/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Request 分類請求，directions 可為純文字或步驟映射
type Request struct {
	CourseID    interface{} `json:"course_id"`
	Title       string      `json:"title" binding:"required"`
	Ingredients string      `json:"ingredients"`
	Directions  interface{} `json:"directions"`
	AllowMulti  *bool       `json:"allow_multi"`
}

// Handler 餐別分類處理器
type Handler struct {
	service *classify.Service
	debug   bool
}

// NewHandler 創建處理器，service 為 nil 表示未啟用
func NewHandler(service *classify.Service, debug bool) *Handler {
	return &Handler{
		service: service,
		debug:   debug,
	}
}

// HandleClassify 對單一食譜進行餐別分類
func (h *Handler) HandleClassify(c *gin.Context) {
	if h.service == nil {
		handlers.RespondError(c, common.ErrAIDisabled, h.debug)
		return
	}

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, handlers.BadRequest(err), h.debug)
		return
	}

	allowMulti := true
	if req.AllowMulti != nil {
		allowMulti = *req.AllowMulti
	}

	requestID := requestid.Get(c)
	ctx := aiservice.WithRequestID(c.Request.Context(), requestID)

	result, err := h.service.Classify(ctx, classify.Request{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Ingredients: req.Ingredients,
		Directions:  classify.DirectionsText(req.Directions),
		AllowMulti:  allowMulti,
	})
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}

	common.LogInfo("分類完成",
		zap.String("request_id", requestID),
		zap.Strings("categories", result.Categories),
		zap.Bool("cache_hit", result.CacheHit),
	)
	c.JSON(http.StatusOK, result)
}
