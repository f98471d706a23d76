package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/poabike/rental-backend/internal/auth"
)

// RateLimiter throttles client traffic per API key. Developers are exempt.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows burst requests per key, refilling over window.
func NewRateLimiter(burst int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Every(window / time.Duration(burst)),
		burst:    burst,
		limiters: make(map[string]*clientLimiter),
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = time.Now()

	// Opportunistic cleanup of keys idle for over an hour.
	if len(rl.limiters) > 1024 {
		cutoff := time.Now().Add(-time.Hour)
		for k, v := range rl.limiters {
			if v.lastSeen.Before(cutoff) {
				delete(rl.limiters, k)
			}
		}
	}

	return cl.limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := GetRole(c)
		if role != auth.RoleClient {
			c.Next()
			return
		}

		key := c.GetHeader("x-api-key")
		if !rl.get(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				gin.H{"message": "too many requests with this API key, try again later"})
			return
		}

		c.Next()
	}
}
