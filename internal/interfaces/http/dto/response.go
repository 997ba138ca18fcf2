package dto

import (
	"github.com/gin-gonic/gin"

	apperrors "study-assistant-api/pkg/errors"
)

// ErrorResponse 错误响应结构，error 字段保持与前端约定一致
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	TraceID string `json:"trace_id,omitempty"`
}

// FromError 把任意错误映射为状态码与响应体，非 AppError 一律 500
func FromError(c *gin.Context, err error) (int, ErrorResponse) {
	appErr := apperrors.AsAppError(err)
	if appErr.Code == apperrors.CodeUnknown {
		appErr = apperrors.ErrInternalError.WithError(err)
	}
	return appErr.HTTPStatus, ErrorResponse{
		Error:   appErr.Description(),
		Code:    string(appErr.Code),
		TraceID: c.GetString("trace_id"),
	}
}

// Fail 写入错误响应并终止后续处理
func Fail(c *gin.Context, err error) {
	status, body := FromError(c, err)
	c.AbortWithStatusJSON(status, body)
}
