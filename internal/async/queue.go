// Package async runs document extraction on a bounded worker pool fed by a job queue.
package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document to process.
type Job struct {
	Path        string
	Force       bool // re-extract even if a run for the same content exists
	SubmittedAt time.Time
	TraceID     string
}

// NewJob stamps path with the submission time and a fresh trace id.
func NewJob(path string, force bool) Job {
	return Job{Path: path, Force: force, SubmittedAt: time.Now().UTC(), TraceID: uuid.NewString()}
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
