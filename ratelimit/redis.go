package ratelimit

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares one fixed window per key across API instances. The
// counter key expires with the window.
type RedisLimiter struct {
	rdb    redis.Cmdable
	rate   int64
	window time.Duration
	prefix string
}

func NewRedis(rdb redis.Cmdable, rate int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, rate: int64(rate), window: window, prefix: "ratelimit:"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, errors.Wrap(err, "ratelimit incr")
	}
	return incr.Val() <= l.rate, nil
}
