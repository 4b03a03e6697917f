package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipBuckets hands out one token bucket per client IP and forgets buckets
// that have been idle for a while, so the map stays bounded by the set of
// recently active clients.
type ipBuckets struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPBuckets(rps, burst int, idleTTL time.Duration) *ipBuckets {
	b := &ipBuckets{
		buckets: make(map[string]*bucket),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
	}
	go b.sweep()
	return b
}

// allow takes one token from ip's bucket, creating it on first sight.
func (b *ipBuckets) allow(ip string) bool {
	b.mu.Lock()
	entry, ok := b.buckets[ip]
	if !ok {
		entry = &bucket{limiter: rate.NewLimiter(b.rps, b.burst)}
		b.buckets[ip] = entry
	}
	entry.lastSeen = time.Now()
	b.mu.Unlock()

	return entry.limiter.Allow()
}

// sweep periodically drops buckets that have not been touched within the
// idle TTL. A dropped bucket simply gets recreated full on next sight.
func (b *ipBuckets) sweep() {
	ticker := time.NewTicker(b.idleTTL)
	defer ticker.Stop()
	for range ticker.C {
		b.mu.Lock()
		for ip, entry := range b.buckets {
			if time.Since(entry.lastSeen) > b.idleTTL {
				delete(b.buckets, ip)
			}
		}
		b.mu.Unlock()
	}
}

// TransportRateLimiter returns a Gin middleware that enforces per-IP
// token-bucket rate limiting at the transport layer. This is distinct from
// the per-caller analysis window enforced inside the handlers: it bounds
// raw request throughput, not analysis quota.
func TransportRateLimiter(rps, burst int) gin.HandlerFunc {
	buckets := newIPBuckets(rps, burst, 3*time.Minute)

	return func(c *gin.Context) {
		if !buckets.allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
