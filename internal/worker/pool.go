package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sender performs the actual external send for one job.
type Sender interface {
	// Send delivers the message text to the chat. A returned error marks
	// the attempt as failed; the pool decides whether to retry.
	Send(ctx context.Context, chatID int64, text string) error
}

// PoolConfig holds configuration options for the worker pool.
type PoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start.
	// If zero or negative, defaults to 1.
	WorkerCount int

	// MaxAttempts bounds delivery attempts per job. With the default of 1
	// the contract is explicitly best-effort: one attempt, then the job is
	// discarded with a diagnostic.
	MaxAttempts int

	// RetryBackoff is the pause between attempts when MaxAttempts > 1.
	RetryBackoff time.Duration

	// DrainTimeout bounds how long Stop waits for the workers to finish
	// the jobs still buffered in the closed queue before cancelling them.
	// If zero or negative, defaults to 10 seconds.
	DrainTimeout time.Duration
}

// DefaultPoolConfig returns a PoolConfig with reasonable defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		WorkerCount:  2,
		MaxAttempts:  1,
		RetryBackoff: 2 * time.Second,
		DrainTimeout: 10 * time.Second,
	}
}

// Pool manages a set of worker goroutines draining the delivery queue.
// One job's failure never affects the jobs behind it: the failed job is
// logged and discarded, and the worker immediately moves on.
type Pool struct {
	queue  JobQueueReader
	sender Sender
	config PoolConfig
	logger *slog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPool creates a worker pool over the given queue and sender.
func NewPool(queue JobQueueReader, sender Sender, config PoolConfig, logger *slog.Logger) *Pool {
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		config.WorkerCount = 1
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.DrainTimeout <= 0 {
		config.DrainTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		queue:  queue,
		sender: sender,
		config: config,
		logger: logger.With("component", "delivery_pool"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("delivery workers started", "worker_count", p.config.WorkerCount)
}

// Stop waits for all workers to exit. Close the queue before calling Stop:
// the workers then drain whatever is already buffered and exit on their
// own. Only when the drain overruns DrainTimeout are the remaining sends
// cancelled.
func (p *Pool) Stop() {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(p.config.DrainTimeout):
		p.logger.Warn("drain timeout exceeded, cancelling remaining deliveries",
			"drain_timeout", p.config.DrainTimeout)
		p.cancel()
		<-done
	}

	p.cancel()
	p.logger.Info("delivery workers stopped")
}

// worker consumes jobs until the queue is closed and drained or the pool is
// stopped.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	log := p.logger.With("worker_id", id)
	log.Debug("starting delivery worker")

	for {
		select {
		case <-p.ctx.Done():
			log.Debug("stopping delivery worker")
			return

		case job, ok := <-p.queue.GetChannel():
			if !ok {
				log.Debug("delivery queue closed, stopping worker")
				return
			}
			p.process(job, log)
		}
	}
}

// process performs the delivery attempts for one job. On terminal failure it
// emits a diagnostic record and discards the job.
func (p *Pool) process(job DeliveryJob, log *slog.Logger) {
	var err error
	for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
		err = p.sender.Send(p.ctx, job.ChatID, job.Message)
		if err == nil {
			log.Info("delivery job succeeded",
				"job_id", job.ID,
				"chat_id", job.ChatID,
				"attempt", attempt,
				"queued_for", time.Since(job.EnqueuedAt))
			return
		}

		if attempt < p.config.MaxAttempts {
			log.Warn("delivery attempt failed, retrying",
				"job_id", job.ID,
				"chat_id", job.ChatID,
				"attempt", attempt,
				"max_attempts", p.config.MaxAttempts,
				"error", err)

			select {
			case <-p.ctx.Done():
				attempt = p.config.MaxAttempts // shutdown: stop retrying
			case <-time.After(p.config.RetryBackoff):
			}
		}
	}

	// Terminal failure: diagnostic record, then the job is dropped so the
	// next job in the queue is processed without delay.
	log.Error("delivery job failed, discarding",
		"job_id", job.ID,
		"chat_id", job.ChatID,
		"attempts", p.config.MaxAttempts,
		"failed_at", time.Now().UTC().Format(time.RFC3339),
		"error", err)
}
