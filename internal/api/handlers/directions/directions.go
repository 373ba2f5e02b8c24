package directions

import (
	"net/http"

	"recipe-prep/internal/api/handlers"
	"recipe-prep/internal/core/prep"
	"recipe-prep/internal/core/queue"
	"recipe-prep/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BatchRequest 批次請求
type BatchRequest struct {
	Records []*common.Record `json:"records"`
}

// BatchItem 批次中單筆結果
type BatchItem struct {
	Index  int            `json:"index"`
	Record *common.Record `json:"record,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// BatchResponse 批次響應
type BatchResponse struct {
	RequestID string      `json:"request_id"`
	Count     int         `json:"count"`
	Failed    int         `json:"failed"`
	Results   []BatchItem `json:"results"`
}

// Handler 步驟前處理處理器
type Handler struct {
	processor *prep.Processor
	queue     *queue.Manager
	debug     bool
}

// NewHandler 創建處理器
func NewHandler(processor *prep.Processor, q *queue.Manager, debug bool) *Handler {
	return &Handler{
		processor: processor,
		queue:     q,
		debug:     debug,
	}
}

// HandleExtract 處理單筆資料列
func (h *Handler) HandleExtract(c *gin.Context) {
	rec := common.NewRecord()
	if err := common.DecodeJSON(c.Request.Body, rec); err != nil {
		handlers.RespondError(c, handlers.BadRequest(err), h.debug)
		return
	}

	out := h.processor.Process(rec)

	common.LogDebug("步驟前處理完成",
		zap.String("request_id", requestid.Get(c)),
		zap.String("field", h.processor.Field()),
	)
	c.JSON(http.StatusOK, out)
}

// HandleBatch 透過工作隊列處理多筆資料列，結果依輸入順序回傳
func (h *Handler) HandleBatch(c *gin.Context) {
	var req BatchRequest
	if err := common.DecodeJSON(c.Request.Body, &req); err != nil {
		handlers.RespondError(c, handlers.BadRequest(err), h.debug)
		return
	}

	results, err := h.queue.ProcessBatch(c.Request.Context(), req.Records)
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}

	resp := BatchResponse{
		RequestID: requestid.Get(c),
		Count:     len(results),
		Results:   make([]BatchItem, len(results)),
	}
	for i, res := range results {
		item := BatchItem{Index: i, Record: res.Record}
		if res.Error != nil {
			item.Error = res.Error.Error()
			resp.Failed++
		}
		resp.Results[i] = item
	}

	common.LogInfo("批次處理完成",
		zap.String("request_id", resp.RequestID),
		zap.Int("count", resp.Count),
		zap.Int("failed", resp.Failed),
	)
	c.JSON(http.StatusOK, resp)
}
