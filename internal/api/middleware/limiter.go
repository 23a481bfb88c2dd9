package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/metrics"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types/status"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/errors"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/response"
)

const limiterIdleTTL = 30 * time.Minute

// IPLimiter keeps one token bucket per client ip.
type IPLimiter struct {
	limit rate.Limit
	burst int

	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
	lastAccess map[string]time.Time
	now        func() time.Time
}

func NewIPLimiter(perSecond float64, burst int) *IPLimiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 5
	}
	return &IPLimiter{
		limit:      rate.Limit(perSecond),
		burst:      burst,
		limiters:   make(map[string]*rate.Limiter),
		lastAccess: make(map[string]time.Time),
		now:        time.Now,
	}
}

// Allow consumes a token of ip's bucket.
func (l *IPLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	limiter, ok := l.limiters[ip]
	if !ok {
		l.sweep(now)
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	l.lastAccess[ip] = now
	return limiter.AllowN(now, 1)
}

// sweep drops buckets unused for limiterIdleTTL. Called with mu held.
func (l *IPLimiter) sweep(now time.Time) {
	for ip, t := range l.lastAccess {
		if now.Sub(t) > limiterIdleTTL {
			delete(l.lastAccess, ip)
			delete(l.limiters, ip)
		}
	}
}

// Handler rejects requests over the limit with 429.
func (l *IPLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			metrics.Default().LoginAttempts.WithLabelValues("throttled").Inc()
			response.HandleFlatResponse(c, errors.New(status.LoginTooManyErr), nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
