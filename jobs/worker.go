package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"vidtube/apperr"
	"vidtube/logger"
	"vidtube/models"
)

// StatusStore is the part of the video store the worker writes to.
type StatusStore interface {
	SetEncodingStatus(ctx context.Context, id string, s models.EncodingStatus) error
}

// Worker drains the transcode queue and walks each video's encoding status
// through pending, processing and ready. Transcode does the media work; the
// default only marks the video ready.
type Worker struct {
	Queue       Queue
	Videos      StatusStore
	Transcode   func(ctx context.Context, job TranscodeJob) error
	MaxAttempts int
	Backoff     time.Duration

	retries sync.WaitGroup
}

func NewWorker(q Queue, videos StatusStore) *Worker {
	return &Worker{
		Queue:       q,
		Videos:      videos,
		Transcode:   func(context.Context, TranscodeJob) error { return nil },
		MaxAttempts: 3,
		Backoff:     2 * time.Second,
	}
}

// Run consumes until ctx is cancelled, then waits for scheduled retries to
// settle.
func (w *Worker) Run(ctx context.Context) error {
	logger.L().WithField("queue", TranscodeQueue).Info("transcode worker started")
	err := w.Queue.Consume(ctx, w.Handle)
	w.retries.Wait()
	logger.L().WithField("queue", TranscodeQueue).Info("transcode worker stopped")
	return err
}

// Handle processes one job. A video deleted while its job waited is not an
// error.
func (w *Worker) Handle(ctx context.Context, job TranscodeJob) error {
	log := logger.L().WithFields(logrus.Fields{"job": job.ID, "video": job.VideoID, "attempt": job.Attempt})
	log.Info("processing video job")

	if err := w.Videos.SetEncodingStatus(ctx, job.VideoID, models.EncodingProcessing); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Info("video no longer exists, dropping job")
			return nil
		}
		return w.fail(ctx, job, log, err)
	}
	if err := w.Transcode(ctx, job); err != nil {
		return w.fail(ctx, job, log, err)
	}
	if err := w.Videos.SetEncodingStatus(ctx, job.VideoID, models.EncodingReady); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Info("video deleted during processing")
			return nil
		}
		return w.fail(ctx, job, log, err)
	}
	log.Info("job completed")
	return nil
}

func (w *Worker) fail(ctx context.Context, job TranscodeJob, log *logrus.Entry, cause error) error {
	if job.Attempt >= w.MaxAttempts {
		log.WithError(cause).Error("job failed")
		w.resetPending(job, log)
		return cause
	}

	delay := w.Backoff * time.Duration(job.Attempt)
	log.WithError(cause).WithField("delay", delay).Warn("job failed, retrying")
	w.retries.Add(1)
	go w.retryAfter(ctx, job.Retry(), delay, log)
	return cause
}

// retryAfter re-enqueues job once delay has passed, off the consumer so the
// queue keeps draining meanwhile.
func (w *Worker) retryAfter(ctx context.Context, job TranscodeJob, delay time.Duration, log *logrus.Entry) {
	defer w.retries.Done()
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		log.Info("retry abandoned on shutdown")
		w.resetPending(job, log)
		return
	case <-t.C:
	}
	if err := w.Queue.Enqueue(ctx, job); err != nil {
		log.WithError(err).Error("failed to re-enqueue job")
		w.resetPending(job, log)
	}
}

// resetPending puts the video back to pending so a later publish or a manual
// re-enqueue can pick it up.
func (w *Worker) resetPending(job TranscodeJob, log *logrus.Entry) {
	if err := w.Videos.SetEncodingStatus(context.Background(), job.VideoID, models.EncodingPending); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		log.WithError(err).Warn("failed to reset encoding status")
	}
}
