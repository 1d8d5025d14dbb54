package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) bool
}

// MemoryLimiter is a fixed-window limiter local to one process. Expired
// buckets are dropped once per window.
type MemoryLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*rateBucket
	now       func() time.Time
	nextSweep time.Time
}

type rateBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*rateBucket), now: time.Now}
}

func (r *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if !now.Before(r.nextSweep) {
		for k, b := range r.buckets {
			if now.After(b.windowEnd) {
				delete(r.buckets, k)
			}
		}
		r.nextSweep = now.Add(window)
	}
	bucket, ok := r.buckets[key]
	if !ok || now.After(bucket.windowEnd) {
		r.buckets[key] = &rateBucket{count: 1, windowEnd: now.Add(window)}
		return true
	}
	if bucket.count >= limit {
		return false
	}
	bucket.count++
	return true
}

// RateLimit rejects requests with 429 once a key exceeds limit requests per
// window. A nil limiter or a non-positive limit disables it.
func RateLimit(limiter Limiter, prefix string, keyFn func(*fiber.Ctx) string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil || limit <= 0 || window <= 0 {
			return c.Next()
		}
		key := keyFn(c)
		if key == "" {
			return c.Next()
		}
		if !limiter.Allow(c.UserContext(), prefix+key, limit, window) {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, try again later")
		}
		return c.Next()
	}
}

// ClientIP is the remote address, or the proxy header value when the app is
// configured with trusted proxies (see routes.AppConfig).
func ClientIP(c *fiber.Ctx) string {
	return c.IP()
}
