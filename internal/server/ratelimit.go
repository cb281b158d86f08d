package server

import (
	"net/http"
	"sync"
	"time"

	"sportclub/internal/api"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ClientLimiter keeps one token bucket per client IP. Buckets idle for
// longer than ttl are evicted by a background loop that runs until Stop.
type ClientLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// NewClientLimiter starts the eviction loop; callers must Stop the limiter.
func NewClientLimiter(rps float64, burst int, ttl, sweepEvery time.Duration) *ClientLimiter {
	cl := &ClientLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	go cl.evictLoop(sweepEvery)
	return cl
}

// Stop ends the eviction loop and waits for it. Safe to call more than once.
func (cl *ClientLimiter) Stop() {
	cl.stopOnce.Do(func() { close(cl.stop) })
	<-cl.done
}

func (cl *ClientLimiter) evictLoop(every time.Duration) {
	defer close(cl.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-cl.stop:
			return
		case <-ticker.C:
			cl.evictIdle()
		}
	}
}

func (cl *ClientLimiter) evictIdle() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cutoff := cl.now().Add(-cl.ttl)
	evicted := 0
	for ip, c := range cl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(cl.clients, ip)
			evicted++
		}
	}
	return evicted
}

// Allow reports whether ip may make another request now.
func (cl *ClientLimiter) Allow(ip string) bool {
	cl.mu.Lock()
	c, ok := cl.clients[ip]
	if !ok {
		c = &client{bucket: rate.NewLimiter(cl.limit, cl.burst)}
		cl.clients[ip] = c
	}
	c.lastSeen = cl.now()
	cl.mu.Unlock()

	return c.bucket.Allow()
}

func (cl *ClientLimiter) size() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.clients)
}

// Middleware rejects over-limit clients with 429.
func (cl *ClientLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
