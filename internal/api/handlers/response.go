package handlers

import (
	"errors"
	"net/http"

	"recipe-prep/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondError 將錯誤轉為統一的 JSON 錯誤響應
func RespondError(c *gin.Context, err error, debug bool) {
	ce := common.AsCustomError(err)

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		ce = common.ErrBodyTooLarge.Wrap(err)
	}

	fields := []zap.Field{
		zap.String("code", ce.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
		zap.Error(err),
	}
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求處理失敗", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, ce.Response(debug))
}

// BadRequest 將解析錯誤包裝為 INVALID_REQUEST
func BadRequest(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	return common.ErrInvalidRequest.Wrap(err)
}
