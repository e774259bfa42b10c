package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	applogger "github.com/maamriaabderahmene/greve-ensta/pkg/logger"
	"github.com/maamriaabderahmene/greve-ensta/pkg/redis"
	"github.com/maamriaabderahmene/greve-ensta/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// limit: 窗口内允许的最大请求数
// window: 滑动窗口时长
// rdb 为 nil 或 limit<=0 时降级放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := rateLimitKey(c)
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis 出错时降级放行
			applogger.FromContext(c.Request.Context(), logger).Warn("限流检查失败", zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}

// rateLimitKey 按客户端 IP 与路由分桶
// c.ClientIP 仅在直连地址属于受信代理时才采信转发头，伪造的 X-Forwarded-For 无法换桶
func rateLimitKey(c *gin.Context) string {
	return fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
}
