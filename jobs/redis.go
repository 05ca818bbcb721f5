package jobs

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"vidtube/logger"
)

// RedisQueue is a list-backed queue: producers LPUSH, consumers BRPOP.
type RedisQueue struct {
	rdb     *redis.Client
	key     string
	poll    time.Duration
	ownsRDB bool
}

// NewRedisQueue dials addr and pings it.
func NewRedisQueue(ctx context.Context, addr, password string) (*RedisQueue, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	q := NewRedisQueueFromClient(rdb, TranscodeQueue)
	q.ownsRDB = true
	return q, nil
}

// NewRedisQueueFromClient shares an existing client. Close leaves it open.
func NewRedisQueueFromClient(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key, poll: 5 * time.Second}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job TranscodeJob) error {
	b, err := encode(job)
	if err != nil {
		return err
	}
	return errors.Wrap(q.rdb.LPush(ctx, q.key, b).Err(), "redis lpush")
}

func (q *RedisQueue) Consume(ctx context.Context, h Handler) error {
	log := logger.L().WithField("queue", q.key)
	for {
		if ctx.Err() != nil {
			return nil
		}
		res, err := q.rdb.BRPop(ctx, q.poll, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, redis.ErrClosed) {
				return ErrClosed
			}
			log.WithError(err).Warn("brpop failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}
		// res is [key, value].
		job, err := decode([]byte(res[1]))
		if err != nil {
			log.WithError(err).Error("dropping malformed job")
			continue
		}
		if err := h(ctx, job); err != nil {
			log.WithError(err).WithField("job", job.ID).Debug("handler returned error")
		}
	}
}

func (q *RedisQueue) Close() error {
	if q.ownsRDB {
		return q.rdb.Close()
	}
	return nil
}
