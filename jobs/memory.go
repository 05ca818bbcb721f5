package jobs

import (
	"context"
	"sync"

	"vidtube/logger"
)

// MemoryQueue is an in-process queue for single-instance deployments and
// tests. Jobs are lost on restart.
type MemoryQueue struct {
	mu     sync.RWMutex
	ch     chan TranscodeJob
	closed bool
}

func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 64
	}
	return &MemoryQueue{ch: make(chan TranscodeJob, buffer)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job TranscodeJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Consume(ctx context.Context, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case job, ok := <-q.ch:
			if !ok {
				return nil
			}
			if err := h(ctx, job); err != nil {
				logger.L().WithError(err).WithField("job", job.ID).Debug("handler returned error")
			}
		}
	}
}

// Len reports the number of jobs waiting.
func (q *MemoryQueue) Len() int { return len(q.ch) }

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	return nil
}
