package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	applogger "github.com/maamriaabderahmene/greve-ensta/pkg/logger"
)

// Logger 请求日志中间件（基于 Zap 结构化日志）
// 同时把带 request_id 的 logger 放入请求 context，供下游 Service 使用
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		reqLogger := logger.With(zap.String("request_id", c.GetString(requestIDKey)))
		c.Request = c.Request.WithContext(applogger.WithContext(c.Request.Context(), reqLogger))

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := []zap.Field{
			zap.Int("status", statusCode),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", latency),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		if statusCode >= 500 {
			reqLogger.Error("请求处理失败", fields...)
		} else if statusCode >= 400 {
			reqLogger.Warn("客户端错误", fields...)
		} else {
			reqLogger.Info("请求完成", fields...)
		}
	}
}
