package middleware

import (
	"net/http"
	"sync"

	"coupon_market/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPRateLimiter 存储每个IP的限流器
type IPRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  *sync.RWMutex
	r   rate.Limit
	b   int
}

// NewIPRateLimiter 创建一个新的IP限流器
// r: 每秒允许的请求数 (QPS)
// b: 桶的大小 (Burst)
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*rate.Limiter),
		mu:  &sync.RWMutex{},
		r:   r,
		b:   b,
	}
}

// GetLimiter 获取指定IP的限流器
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.ips[ip]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.ips[ip] = limiter
	}

	return limiter
}

// 全局限流器：每秒 1000 个请求，突发 2000
var globalLimiter = NewIPRateLimiter(1000, 2000)

// RateLimitMiddleware 全局限流中间件
func RateLimitMiddleware() gin.HandlerFunc {
	return limitWith(globalLimiter)
}

// RewardRateLimitMiddleware 奖励接口的上游限流
// 广告奖励核心不做冷却，频控在这里收口：每 IP 每秒 1 次，突发 3
func RewardRateLimitMiddleware() gin.HandlerFunc {
	return limitWith(NewIPRateLimiter(1, 3))
}

func limitWith(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.GetLimiter(c.ClientIP()).Allow() {
			response.Error(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "Too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
