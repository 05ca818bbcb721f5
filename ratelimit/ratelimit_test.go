package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_Window(t *testing.T) {
	rl := NewMemory(2, time.Minute)
	defer rl.Stop()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		ok, err := rl.Allow(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "request %d", i)
	}
	ok, _ := rl.Allow(ctx, "b")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _ = rl.Allow(ctx, "a")
	assert.True(t, ok, "window resets")
}

func TestMemoryLimiter_Cleanup(t *testing.T) {
	rl := NewMemory(1, time.Second)
	defer rl.Stop()
	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.Allow(context.Background(), "old")
	now = now.Add(3 * time.Second)
	rl.cleanup()
	assert.Empty(t, rl.visitors)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	assert.Equal(t, "203.0.113.9", ClientIP(r), "untrusted peers cannot spoof")

	r.RemoteAddr = "172.18.0.2:5555"
	assert.Equal(t, "1.2.3.4", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "5.6.7.8, 172.18.0.1")
	assert.Equal(t, "5.6.7.8", ClientIP(r))

	r.Header.Set("X-Real-IP", "9.9.9.9")
	assert.Equal(t, "9.9.9.9", ClientIP(r))
}

type errLimiter struct{}

func (errLimiter) Allow(context.Context, string) (bool, error) { return false, errors.New("redis down") }

func TestMiddleware(t *testing.T) {
	rl := NewMemory(1, 30*time.Second)
	defer rl.Stop()
	h := Middleware(rl, 30*time.Second, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestMiddleware_FailsOpen(t *testing.T) {
	h := Middleware(errLimiter{}, time.Minute, ByIP)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRedisLimiter_Live(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_TEST_PASSWORD")})
	defer rdb.Close()
	l := NewRedis(rdb, 2, 5*time.Second)
	key := "test:" + time.Now().Format(time.RFC3339Nano)
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, ok, "request %d", i)
	}
	ttl, err := rdb.TTL(ctx, l.prefix+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
