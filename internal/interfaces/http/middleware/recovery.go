// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"study-assistant-api/internal/interfaces/http/dto"
	"study-assistant-api/pkg/errors"
	"study-assistant-api/pkg/logger"
)

// Recovery Panic 恢复中间件，返回统一错误 JSON
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				stack := string(debug.Stack())

				logger.Error(c.Request.Context(), "panic recovered",
					fmt.Errorf("%v", err),
					"stack", stack,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Error:   errors.ErrInternalError.Message,
					Code:    string(errors.CodeInternalError),
					TraceID: c.GetString("trace_id"),
				})
			}
		}()

		c.Next()
	}
}
