package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"json-share-api/internal/application/apperr"
	"json-share-api/internal/infrastructure/metrics"
	"json-share-api/internal/interface/api/rest/response"
)

const DefaultLimiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is an in-memory token bucket per client IP. X-User-ID is not
// verified, so it never selects the bucket. Buckets idle for longer than
// idleTTL are dropped.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastPrune time.Time

	rps      rate.Limit
	burst    int
	idleTTL  time.Duration
	mCounter *prometheus.CounterVec
	now      func() time.Time
}

func NewRateLimiter(rps float64, burst int, idleTTL time.Duration, mCounter *prometheus.CounterVec) *RateLimiter {
	if idleTTL <= 0 {
		idleTTL = DefaultLimiterIdleTTL
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		idleTTL:  idleTTL,
		mCounter: mCounter,
		now:      time.Now,
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastPrune) >= rl.idleTTL {
		rl.prune(now)
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

// prune must be called with mu held.
func (rl *RateLimiter) prune(now time.Time) {
	for k, v := range rl.visitors {
		if now.Sub(v.lastSeen) >= rl.idleTTL {
			delete(rl.visitors, k)
		}
	}
	rl.lastPrune = now
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Middleware returns the gin handler. A non-positive rate disables limiting.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rps <= 0 {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}

		if !rl.allow("ip:" + ip) {
			if rl.mCounter != nil {
				rl.mCounter.WithLabelValues(metrics.RateLimited).Inc()
			}
			c.Header("Retry-After", "1")
			response.Fail(c, apperr.New(apperr.CodeRateLimited, "too many requests, please slow down"), false)
			return
		}

		c.Next()
	}
}
