package middleware

import (
	"time"

	"github.com/IamGODofNEWWORLD/MeShare/internal/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorMonitorMiddleware 把请求错误记入分析器并打日志
func ErrorMonitorMiddleware(analytics *errors.ErrorAnalytics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		ctx := errors.ErrorContext{
			Path:      c.Request.URL.Path,
			Method:    c.Request.Method,
			Timestamp: time.Now(),
		}

		for _, e := range c.Errors {
			traced := errors.NewTracedError(e.Err, ctx)
			analytics.Record(traced)

			zap.L().Error("请求处理错误",
				zap.Int("error_code", int(traced.Code)),
				zap.String("error_message", traced.Message),
				zap.Error(traced.Err),
				zap.String("path", ctx.Path),
				zap.String("method", ctx.Method))
		}
	}
}
