// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	RedisClient redis.UniversalClient
	Limit       int                       // 窗口内允许的请求数
	Window      time.Duration             // 时间窗口
	KeyFunc     func(*gin.Context) string // 限流键
}

// RateLimit 固定窗口限流中间件，Redis 不可用时放行
func RateLimit(config *RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.RedisClient == nil || config.Limit <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := config.KeyFunc(c)

		count, err := config.RedisClient.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("Rate limit check failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			config.RedisClient.Expire(ctx, key, config.Window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		if int(count) > config.Limit {
			ttl, _ := config.RedisClient.TTL(ctx, key).Result()
			if ttl < 0 {
				ttl = config.Window
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))

			response.TooManyRequests(c, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(config.Limit-int(count)))

		c.Next()
	}
}

// IPRateLimit 按客户端 IP 限流
func IPRateLimit(client redis.UniversalClient, limit int, window time.Duration) gin.HandlerFunc {
	return RateLimit(&RateLimitConfig{
		RedisClient: client,
		Limit:       limit,
		Window:      window,
		KeyFunc: func(c *gin.Context) string {
			return fmt.Sprintf("ratelimit:ip:%s", c.ClientIP())
		},
	})
}

// StaffRateLimit 按员工限流，未认证时退化为按 IP
func StaffRateLimit(client redis.UniversalClient, limit int, window time.Duration) gin.HandlerFunc {
	return RateLimit(&RateLimitConfig{
		RedisClient: client,
		Limit:       limit,
		Window:      window,
		KeyFunc: func(c *gin.Context) string {
			if staffID := GetStaffID(c); staffID > 0 {
				return fmt.Sprintf("ratelimit:staff:%d", staffID)
			}
			return fmt.Sprintf("ratelimit:ip:%s", c.ClientIP())
		},
	})
}
