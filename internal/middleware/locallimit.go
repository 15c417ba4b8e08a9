package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalRateLimit 是没有 Redis 时的单实例限流：按客户端 IP 维护令牌桶，
// 每个窗口补充 limit 个令牌。
// 空闲超过一个窗口的桶会被清理。
func LocalRateLimit(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	every := rate.Every(window / time.Duration(limit))

	var (
		mu        sync.Mutex
		visitors  = make(map[string]*visitor)
		lastPrune = time.Now()
	)
	get := func(ip string, now time.Time) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		if now.Sub(lastPrune) >= window {
			for k, v := range visitors {
				if now.Sub(v.lastSeen) >= window {
					delete(visitors, k)
				}
			}
			lastPrune = now
		}
		v, ok := visitors[ip]
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(every, limit)}
			visitors[ip] = v
		}
		v.lastSeen = now
		return v.limiter
	}

	return func(c *gin.Context) {
		now := time.Now()
		lim := get(c.ClientIP(), now)
		if !lim.AllowN(now, 1) {
			c.Header("Retry-After", fmt.Sprintf("%d", int64(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests from this IP, please try again later.",
			})
			return
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", int(lim.TokensAt(now))))
		c.Next()
	}
}
