// Package jobs carries video transcode jobs from the publish path to a
// background worker. The queue backends are interchangeable; retries are the
// worker's business, so every backend acknowledges a job once its handler
// returns.
package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// TranscodeQueue is the queue name shared by every backend.
const TranscodeQueue = "video-transcode"

var ErrClosed = errors.New("jobs: queue closed")

type TranscodeJob struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"videoId"`
	Attempt    int       `json:"attempt"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// NewTranscodeJob builds the first attempt of a job for videoID.
func NewTranscodeJob(videoID string) TranscodeJob {
	return TranscodeJob{
		ID:         uuid.New().String(),
		VideoID:    videoID,
		Attempt:    1,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Retry returns the next attempt of j.
func (j TranscodeJob) Retry() TranscodeJob {
	j.Attempt++
	j.EnqueuedAt = time.Now().UTC()
	return j
}

type Handler func(ctx context.Context, job TranscodeJob) error

type Queue interface {
	Enqueue(ctx context.Context, job TranscodeJob) error
	// Consume delivers jobs to h until ctx is cancelled. It returns nil on
	// cancellation and an error only when the backend fails.
	Consume(ctx context.Context, h Handler) error
	Close() error
}

func encode(job TranscodeJob) ([]byte, error) {
	b, err := json.Marshal(job)
	return b, errors.Wrap(err, "encode job")
}

func decode(b []byte) (TranscodeJob, error) {
	var job TranscodeJob
	if err := json.Unmarshal(b, &job); err != nil {
		return job, errors.Wrap(err, "decode job")
	}
	if job.VideoID == "" {
		return job, errors.New("decode job: missing videoId")
	}
	return job, nil
}
