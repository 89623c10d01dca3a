package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the JobQueue
var (
	ErrQueueClosed = errors.New("delivery queue is closed")
	ErrQueueFull   = errors.New("delivery queue is full")
)

// JobQueueReader provides read-only access to the job channel, allowing
// workers to consume jobs without the ability to enqueue.
type JobQueueReader interface {
	// GetChannel returns a read-only channel for consuming jobs.
	GetChannel() <-chan DeliveryJob
}

// JobQueueWriter provides write access to the job queue, allowing the
// delivery router and the scheduler to submit jobs for processing.
type JobQueueWriter interface {
	// Enqueue adds a job to the queue for processing. The return value
	// makes submission explicit: nil means the job was accepted into the
	// queue, not that it was delivered.
	Enqueue(job DeliveryJob) error

	// Close closes the job queue, preventing further submission.
	Close()
}

// JobQueue implements a buffered multi-producer/multi-consumer queue that
// satisfies both JobQueueReader and JobQueueWriter. Each job is received by
// exactly one consumer.
type JobQueue struct {
	jobs   chan DeliveryJob
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Ensure JobQueue satisfies the queue interfaces
var (
	_ JobQueueReader = (*JobQueue)(nil)
	_ JobQueueWriter = (*JobQueue)(nil)
)

// NewJobQueue creates a new job queue with the specified buffer size.
func NewJobQueue(size int, logger *slog.Logger) *JobQueue {
	return &JobQueue{
		jobs:   make(chan DeliveryJob, size),
		logger: logger.With("component", "job_queue"),
	}
}

// Enqueue adds a job to the queue for processing.
// Returns ErrQueueFull or ErrQueueClosed when the job cannot be accepted.
func (q *JobQueue) Enqueue(job DeliveryJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("delivery job enqueued",
			"job_id", job.ID,
			"chat_id", job.ChatID,
			"queue_len", len(q.jobs),
			"queue_cap", cap(q.jobs))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.jobs))
	}
}

// Close closes the job queue, preventing further submission. Workers drain
// whatever is already buffered before exiting.
func (q *JobQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Info("delivery queue closed")
	}
}

// GetChannel returns a read-only channel for consuming jobs.
func (q *JobQueue) GetChannel() <-chan DeliveryJob {
	return q.jobs
}
