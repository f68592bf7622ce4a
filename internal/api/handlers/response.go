package handlers

import (
	"context"
	"errors"
	"net/http"

	"homecuistot/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WriteError 將錯誤轉為統一的錯誤響應
func WriteError(c *gin.Context, err error, debug bool) {
	status, body := errorResponse(err)
	if debug {
		body.Details = err.Error()
	}

	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("code", body.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		common.LogError("request error", fields...)
	} else {
		common.LogDebug("request error", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func errorResponse(err error) (int, common.ErrorResponse) {
	switch {
	case common.IsValidationError(err):
		return http.StatusBadRequest, common.ErrorResponse{Code: common.ErrCodeInvalidRequest, Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, common.ErrorResponse{Code: common.ErrCodeGatewayTimeout, Message: common.ErrGatewayTimeout.Message}
	}

	if ce, ok := common.AsCustomError(err); ok {
		status := ce.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, common.ErrorResponse{Code: ce.Code, Message: ce.Message}
	}

	return http.StatusInternalServerError, common.ErrorResponse{
		Code:    common.ErrCodeInternalError,
		Message: common.ErrInternalError.Message,
	}
}
