// Package ratelimit provides a fixed-window per-client rate limiting
// middleware backed by Redis, so the limit holds across replicas.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/redis/go-redis/v9"

	"urlmapper/pkg/response"
)

// Limiter counts requests per client IP in fixed windows using Redis
// INCR/EXPIRE. The first increment of a window sets the window expiry,
// so counters clean themselves up.
type Limiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
}

func New(client *redis.Client, requests int, window time.Duration) *Limiter {
	return &Limiter{
		client:   client,
		requests: requests,
		window:   window,
	}
}

// Allow reports whether a request from the given client fits the current
// window. Redis failures count as allowed; throttling is best effort and
// must not take the API down with it.
func (l *Limiter) Allow(r *http.Request) bool {
	key := fmt.Sprintf("ratelimit:%s", clientIP(r))

	count, err := l.client.Incr(r.Context(), key).Result()
	if err != nil {
		return true
	}

	if count == 1 {
		l.client.Expire(r.Context(), key, l.window)
	}

	return count <= int64(l.requests)
}

// Handler returns the middleware enforcing the limit.
func (l *Limiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(r) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(l.window.Seconds())))
			render.Status(r, http.StatusTooManyRequests)
			render.JSON(w, r, response.TooManyRequestsResponse)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
