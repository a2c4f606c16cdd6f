// Package ratelimit throttles sandbox clients with a sliding one-minute window,
// the way the vendor's test environment answers bursts with HTTP 429.
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// WindowDuration is the sliding window size
const WindowDuration = time.Minute

// Limiter is a per-client sliding window rate limiter
type Limiter struct {
	limit   int                    // max requests per window (0 = disabled)
	windows map[string][]time.Time // client key -> request timestamps
	now     func() time.Time
	mu      sync.Mutex
}

// New creates a limiter allowing limit requests per minute per client.
// limit <= 0 disables it.
func New(limit int) *Limiter {
	return &Limiter{
		limit:   limit,
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// prune drops timestamps outside the window; callers hold mu
func (l *Limiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-WindowDuration)
	timestamps := l.windows[key]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}
	if len(valid) == 0 {
		delete(l.windows, key)
		return nil
	}
	l.windows[key] = valid
	return valid
}

// Allow records a request for key and reports whether it is within the limit
func (l *Limiter) Allow(key string) bool {
	if l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	timestamps := l.prune(key, now)
	if len(timestamps) >= l.limit {
		return false
	}
	l.windows[key] = append(timestamps, now)
	return true
}

// Remaining returns how many requests key has left, -1 when unlimited
func (l *Limiter) Remaining(key string) int {
	if l.limit <= 0 {
		return -1
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := l.limit - len(l.prune(key, l.now()))
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// RetryAfter returns how long key must wait for its oldest request to leave
// the window. Zero means a request would be allowed now.
func (l *Limiter) RetryAfter(key string) time.Duration {
	if l.limit <= 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	timestamps := l.prune(key, now)
	if len(timestamps) < l.limit {
		return 0
	}
	return timestamps[0].Add(WindowDuration).Sub(now)
}

// ClientKey identifies the caller by the host part of its remote address
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects over-limit requests by calling reject after setting
// Retry-After. Requests within the limit reach next with X-RateLimit-Remaining
// set when limiting is enabled.
func (l *Limiter) Middleware(reject http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientKey(r)
			if !l.Allow(key) {
				secs := int(l.RetryAfter(key).Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				reject(w, r)
				return
			}
			if remaining := l.Remaining(key); remaining >= 0 {
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			}
			next.ServeHTTP(w, r)
		})
	}
}
