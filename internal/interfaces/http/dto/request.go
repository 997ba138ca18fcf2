// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "study-assistant-api/pkg/errors"
)

// BindJSON 解析 JSON 请求体，解析失败统一转为参数错误
func BindJSON(c *gin.Context, out any) error {
	if err := c.ShouldBindJSON(out); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperrors.Validation("request body exceeds %d bytes", tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return apperrors.Validation("request body is required")
		default:
			return apperrors.ErrInvalidParam.WithError(err).WithDetail("malformed JSON body")
		}
	}
	return nil
}
