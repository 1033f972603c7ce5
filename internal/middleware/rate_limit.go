// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/javajoker/sales-ledger/internal/i18n"
	"github.com/javajoker/sales-ledger/internal/utils"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	visitors map[string]*visitor
	mtx      sync.Mutex
	rate     rate.Limit
	burst    int
	key      func(*gin.Context) string
	idle     time.Duration
	swept    time.Time
	now      func() time.Time
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
		key:      func(c *gin.Context) string { return c.ClientIP() },
		idle:     3 * time.Minute,
		swept:    time.Now(),
		now:      time.Now,
	}
}

// cleanupVisitorsLocked drops visitors idle for longer than rl.idle.
func (rl *RateLimiter) cleanupVisitorsLocked() {
	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idle {
			delete(rl.visitors, ip)
		}
	}
	rl.swept = now
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	if rl.now().Sub(rl.swept) > time.Minute {
		rl.cleanupVisitorsLocked()
	}

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter, rl.now()}
		return limiter
	}

	v.lastSeen = rl.now()
	return v.limiter
}

// KeyedByUser buckets authenticated requests per user id instead of per
// client IP. It must run after AuthRequired; anonymous requests fall back to
// the client IP.
func (rl *RateLimiter) KeyedByUser() *RateLimiter {
	rl.key = func(c *gin.Context) string {
		if claims, ok := ClaimsFromContext(c); ok {
			return "user:" + claims.UserID
		}
		return c.ClientIP()
	}
	return rl
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.getVisitor(rl.key(c))

		if !limiter.Allow() {
			utils.AbortWithError(c, http.StatusTooManyRequests, utils.CodeRateLimited,
				i18n.T(utils.GetLangFromContext(c), i18n.KeyRateLimited))
			return
		}

		c.Next()
	}
}

// Default limits
func NewGeneralRateLimiter() *RateLimiter {
	return NewRateLimiter(rate.Every(100*time.Millisecond), 20)
}

// NewStoreRateLimiter sizes the burst for several back-to-back ledger
// operations; a single sale reads and writes all three collections.
func NewStoreRateLimiter() *RateLimiter {
	return NewRateLimiter(rate.Every(20*time.Millisecond), 300).KeyedByUser()
}

func NewAuthRateLimiter() *RateLimiter {
	return NewRateLimiter(rate.Every(12*time.Second), 5)
}
