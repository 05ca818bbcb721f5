package jobs

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/apperr"
	"vidtube/models"
)

type statusLog struct {
	mu      sync.Mutex
	history map[string][]models.EncodingStatus
	missing map[string]bool
}

func newStatusLog() *statusLog {
	return &statusLog{history: map[string][]models.EncodingStatus{}, missing: map[string]bool{}}
}

func (s *statusLog) SetEncodingStatus(_ context.Context, id string, st models.EncodingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missing[id] {
		return apperr.NotFound("video not found")
	}
	s.history[id] = append(s.history[id], st)
	return nil
}

func (s *statusLog) get(id string) []models.EncodingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.EncodingStatus(nil), s.history[id]...)
}

func runWorker(t *testing.T, w *Worker) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestWorker_MovesVideoToReady(t *testing.T) {
	q := NewMemoryQueue(8)
	videos := newStatusLog()
	w := NewWorker(q, videos)
	runWorker(t, w)

	require.NoError(t, q.Enqueue(context.Background(), NewTranscodeJob("v1")))

	require.Eventually(t, func() bool { return len(videos.get("v1")) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []models.EncodingStatus{models.EncodingProcessing, models.EncodingReady}, videos.get("v1"))
}

func TestWorker_RetriesThenResetsToPending(t *testing.T) {
	q := NewMemoryQueue(8)
	videos := newStatusLog()
	w := NewWorker(q, videos)
	w.Backoff = time.Millisecond
	var mu sync.Mutex
	attempts := 0
	w.Transcode = func(context.Context, TranscodeJob) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return errors.New("encoder crashed")
	}
	runWorker(t, w)

	require.NoError(t, q.Enqueue(context.Background(), NewTranscodeJob("v1")))

	want := []models.EncodingStatus{
		models.EncodingProcessing, models.EncodingProcessing, models.EncodingProcessing, models.EncodingPending,
	}
	require.Eventually(t, func() bool { return len(videos.get("v1")) == len(want) }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, want, videos.get("v1"))
	mu.Lock()
	assert.Equal(t, 3, attempts)
	mu.Unlock()
}

func TestWorker_BackoffDoesNotBlockQueue(t *testing.T) {
	q := NewMemoryQueue(8)
	videos := newStatusLog()
	w := NewWorker(q, videos)
	w.Backoff = time.Hour
	w.Transcode = func(_ context.Context, job TranscodeJob) error {
		if job.VideoID == "bad" {
			return errors.New("encoder crashed")
		}
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	require.NoError(t, q.Enqueue(context.Background(), NewTranscodeJob("bad")))
	require.NoError(t, q.Enqueue(context.Background(), NewTranscodeJob("good")))
	require.Eventually(t, func() bool { return len(videos.get("good")) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []models.EncodingStatus{models.EncodingProcessing}, videos.get("bad"))

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop with a retry pending")
	}
	assert.Equal(t, []models.EncodingStatus{models.EncodingProcessing, models.EncodingPending}, videos.get("bad"))
}

func TestWorker_DropsJobForDeletedVideo(t *testing.T) {
	videos := newStatusLog()
	videos.missing["gone"] = true
	w := NewWorker(NewMemoryQueue(1), videos)

	assert.NoError(t, w.Handle(context.Background(), NewTranscodeJob("gone")))
	assert.Empty(t, videos.get("gone"))
}

func TestMemoryQueue_Closed(t *testing.T) {
	q := NewMemoryQueue(1)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Enqueue(context.Background(), NewTranscodeJob("v")), ErrClosed)
	assert.NoError(t, q.Consume(context.Background(), func(context.Context, TranscodeJob) error { return nil }))
}

func TestMemoryQueue_EnqueueRespectsContext(t *testing.T) {
	q := NewMemoryQueue(1)
	require.NoError(t, q.Enqueue(context.Background(), NewTranscodeJob("a")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Enqueue(ctx, NewTranscodeJob("b")), context.DeadlineExceeded)
	assert.Equal(t, 1, q.Len())
}

func TestJobCodec(t *testing.T) {
	job := NewTranscodeJob("v9")
	b, err := encode(job)
	require.NoError(t, err)
	got, err := decode(b)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, 1, got.Attempt)

	assert.Equal(t, 2, job.Retry().Attempt)

	_, err = decode([]byte(`{"id":"x"}`))
	assert.Error(t, err)
}

func TestRedisQueue_Live(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	q, err := NewRedisQueue(context.Background(), addr, os.Getenv("REDIS_TEST_PASSWORD"))
	require.NoError(t, err)
	q.key = "vidtube-test-" + NewTranscodeJob("x").ID
	q.poll = 100 * time.Millisecond
	defer q.Close()

	require.NoError(t, q.Enqueue(context.Background(), NewTranscodeJob("r1")))
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	got := make(chan string, 1)
	go q.Consume(ctx, func(_ context.Context, j TranscodeJob) error {
		got <- j.VideoID
		cancel()
		return nil
	})
	select {
	case id := <-got:
		assert.Equal(t, "r1", id)
	case <-ctx.Done():
		t.Fatal("job not delivered")
	}
}

func TestAMQPQueue_Live(t *testing.T) {
	url := os.Getenv("AMQP_TEST_URL")
	if url == "" {
		t.Skip("AMQP_TEST_URL not set")
	}
	q, err := NewAMQPQueue(url)
	require.NoError(t, err)
	defer q.Close()

	job := NewTranscodeJob("a1")
	require.NoError(t, q.Enqueue(context.Background(), job))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got := make(chan string, 8)
	go q.Consume(ctx, func(_ context.Context, j TranscodeJob) error {
		got <- j.ID
		return nil
	})
	for {
		select {
		case id := <-got:
			if id == job.ID {
				return
			}
		case <-ctx.Done():
			t.Fatal("job not delivered")
		}
	}
}
