package middleware

import (
	"net/http"
	"sync"
	"time"

	"Dominion/internal/shared/transport"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc 从请求里取限流维度，返回空串表示不限流。
type KeyFunc func(c *gin.Context) string

// RateLimiter 按 key（通常是 kingdom_id）维护令牌桶，长时间不活跃的桶会被回收。
type RateLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idle    time.Duration
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idle:    10 * time.Minute,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// SetLimit 热更新令牌桶参数，已有的桶立即生效。
func (r *RateLimiter) SetLimit(perSecond float64, burst int) {
	if burst <= 0 {
		burst = 1
	}
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limit, r.burst = rate.Limit(perSecond), burst
	for _, b := range r.buckets {
		b.limiter.SetLimitAt(now, r.limit)
		b.limiter.SetBurstAt(now, burst)
	}
}

func (r *RateLimiter) Allow(key string) bool {
	if r == nil || key == "" {
		return true
	}
	now := r.now()
	r.mu.Lock()
	if r.limit <= 0 {
		r.mu.Unlock()
		return true
	}
	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.buckets[key] = b
		if len(r.buckets)%256 == 0 {
			r.evictLocked(now)
		}
	}
	b.lastSeen = now
	r.mu.Unlock()
	return b.limiter.AllowN(now, 1)
}

func (r *RateLimiter) evictLocked(now time.Time) {
	for k, b := range r.buckets {
		if now.Sub(b.lastSeen) > r.idle {
			delete(r.buckets, k)
		}
	}
}

// RateLimit 是 gin 中间件形式，超限直接返回 429。
func RateLimit(r *RateLimiter, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow(key(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code": int(transport.RateLimited),
				"msg":  "请求过于频繁",
			})
			return
		}
		c.Next()
	}
}
