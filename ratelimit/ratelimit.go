// Package ratelimit throttles requests per client with a fixed-window
// counter, kept in process memory or in Redis when several API instances
// share one budget.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"vidtube/httputil"
	"vidtube/logger"
)

// Limiter decides whether key may make one more request in the current
// window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is a per-key fixed-window counter for single-instance
// deployments.
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*bucket
	rate     int
	window   time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

// NewMemory creates a limiter allowing rate requests per window. Stale
// entries are evicted in the background until Stop is called.
func NewMemory(rate int, window time.Duration) *MemoryLimiter {
	rl := &MemoryLimiter{
		visitors: make(map[string]*bucket),
		rate:     rate,
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go func() {
		t := time.NewTicker(5 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-rl.stop:
				return
			case <-t.C:
				rl.cleanup()
			}
		}
	}()
	return rl
}

func (rl *MemoryLimiter) Stop() { rl.stopOnce.Do(func() { close(rl.stop) }) }

func (rl *MemoryLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-2 * rl.window)
	for key, b := range rl.visitors {
		if b.lastReset.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, exists := rl.visitors[key]
	if !exists || now.Sub(b.lastReset) >= rl.window {
		rl.visitors[key] = &bucket{tokens: rl.rate - 1, lastReset: now}
		return true, nil
	}
	if b.tokens <= 0 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// trustedCIDRs are container and loopback networks whose proxy headers we trust.
var trustedCIDRs = func() []*net.IPNet {
	cidrs := []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"::1/128",
		"fc00::/7",
	}
	var nets []*net.IPNet
	for _, c := range cidrs {
		_, n, _ := net.ParseCIDR(c)
		nets = append(nets, n)
	}
	return nets
}()

func isTrustedProxy(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, cidr := range trustedCIDRs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP extracts the client address. X-Real-IP and X-Forwarded-For are
// only honoured when the connection comes from a trusted proxy.
func ClientIP(r *http.Request) string {
	if isTrustedProxy(r.RemoteAddr) {
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			return strings.TrimSpace(realIP)
		}
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			if idx := strings.IndexByte(forwarded, ','); idx != -1 {
				return strings.TrimSpace(forwarded[:idx])
			}
			return strings.TrimSpace(forwarded)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(r *http.Request) string

// ByIP charges requests to the client address.
func ByIP(r *http.Request) string { return "ip:" + ClientIP(r) }

// Middleware returns 429 once the key's budget is spent. A limiter backend
// error lets the request through.
func Middleware(l Limiter, window time.Duration, key KeyFunc) func(http.Handler) http.Handler {
	if key == nil {
		key = ByIP
	}
	retryAfter := strconv.Itoa(int(window.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Allow(r.Context(), key(r))
			if err != nil {
				logger.L().WithError(err).Warn("rate limiter unavailable")
				ok = true
			}
			if !ok {
				w.Header().Set("Retry-After", retryAfter)
				httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorBody{
					StatusCode: http.StatusTooManyRequests,
					Error:      "too many requests",
					Code:       "RATE_429",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
