package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterSweepInterval = 10 * time.Minute
	limiterIdleTTL       = 30 * time.Minute
)

// KeyFunc picks the bucket a request is counted against. An empty key skips
// limiting.
type KeyFunc func(r *http.Request) string

type keyedLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// ClientIP keys requests by the host part of RemoteAddr. Behind a proxy,
// chi's RealIP middleware must run first for this to see the client.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit applies a token bucket per key. Stale buckets are swept every 10
// minutes until ctx is done.
func RateLimit(ctx context.Context, requestsPerSecond float64, burst int, key KeyFunc) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*keyedLimiter)
	)

	go func() {
		ticker := time.NewTicker(limiterSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mu.Lock()
				cutoff := time.Now().Add(-limiterIdleTTL)
				for k, kl := range limiters {
					if kl.lastAccess.Before(cutoff) {
						delete(limiters, k)
					}
				}
				mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	limiterFor := func(k string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		kl, ok := limiters[k]
		if !ok {
			kl = &keyedLimiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
			limiters[k] = kl
		}
		kl.lastAccess = time.Now()
		return kl.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiterFor(k).Allow() {
				w.Header().Set("Content-Type", "application/problem+json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"title":"Too Many Requests","status":429,"detail":"rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
