package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Samikshyapaudel0/complanify-cms/pkg/redis"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件，按客户端 IP 与路由计数。
// rdb 为 nil 或 limit <= 0 时不限流，Redis 出错时降级放行（与 JWTAuth 策略一致）
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := "rate_limit:" + c.FullPath() + ":" + c.ClientIP()
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
