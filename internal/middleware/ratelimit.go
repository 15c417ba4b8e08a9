package middleware

import (
	"fmt"
	"net/http"
	"time"

	rediskey "qr_menu/pkg/redis"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// luaRateLimit：基于有序集合的滑动窗口限流 Lua 脚本（原子操作）
// KEYS[1]=限流key，ARGV[1]=当前时间戳，ARGV[2]=窗口开始时间戳，ARGV[3]=窗口秒数，
// ARGV[4]=成员，ARGV[5]=上限。返回窗口内请求数，超限返回 -1
const luaRateLimit = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowStart = tonumber(ARGV[2])
local windowSec = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '0', windowStart)

local count = redis.call('ZCARD', key)

if count < tonumber(ARGV[5]) then
  redis.call('ZADD', key, now, member)
  redis.call('EXPIRE', key, windowSec)
  return count + 1
else
  return -1
end
`

// RedisRateLimit Redis 分布式限流（Lua 原子操作 + 按客户端 IP），
// 多实例共享窗口。Redis 出错时放行。
func RedisRateLimit(rdb *rd.Client, scope string, limit int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := rediskey.RateLimitKey(scope, c.ClientIP())

		now := time.Now()
		windowSec := int64(window.Seconds())
		windowStart := now.Unix() - windowSec
		member := fmt.Sprintf("%d-%d", now.Unix(), now.UnixNano())

		res, err := rdb.Eval(c.Request.Context(), luaRateLimit, []string{key},
			now.Unix(), windowStart, windowSec, member, limit).Int()
		if err != nil {
			log.Debug("rate limit unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}

		if res < 0 {
			c.Header("Retry-After", fmt.Sprintf("%d", windowSec))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests from this IP, please try again later.",
			})
			return
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", limit-res))
		c.Next()
	}
}
