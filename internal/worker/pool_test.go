package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender captures sends and fails on demand per chat ID.
type recordingSender struct {
	mu       sync.Mutex
	sends    []int64
	failFor  map[int64]error
	attempts map[int64]int
}

func newRecordingSender() *recordingSender {
	return &recordingSender{
		failFor:  make(map[int64]error),
		attempts: make(map[int64]int),
	}
}

func (s *recordingSender) Send(ctx context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[chatID]++
	if err, ok := s.failFor[chatID]; ok {
		return err
	}
	s.sends = append(s.sends, chatID)
	return nil
}

func (s *recordingSender) delivered() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.sends))
	copy(out, s.sends)
	return out
}

func (s *recordingSender) attemptCount(chatID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[chatID]
}

func TestPoolDeliversJobs(t *testing.T) {
	q := NewJobQueue(8, testLogger())
	sender := newRecordingSender()

	pool := NewPool(q, sender, PoolConfig{WorkerCount: 2, MaxAttempts: 1}, testLogger())
	pool.Start()

	require.NoError(t, q.Enqueue(NewDeliveryJob(1, "first", nil)))
	require.NoError(t, q.Enqueue(NewDeliveryJob(2, "second", nil)))

	q.Close()
	pool.Stop()

	assert.ElementsMatch(t, []int64{1, 2}, sender.delivered())
}

func TestPoolFailedJobIsDiscarded(t *testing.T) {
	q := NewJobQueue(8, testLogger())
	sender := newRecordingSender()
	sender.failFor[1] = errors.New("chat unreachable")

	pool := NewPool(q, sender, PoolConfig{WorkerCount: 1, MaxAttempts: 1}, testLogger())
	pool.Start()

	// A failing job must not block or poison the job behind it
	require.NoError(t, q.Enqueue(NewDeliveryJob(1, "doomed", nil)))
	require.NoError(t, q.Enqueue(NewDeliveryJob(2, "healthy", nil)))

	q.Close()
	pool.Stop()

	assert.Equal(t, []int64{2}, sender.delivered())
	assert.Equal(t, 1, sender.attemptCount(1), "best-effort contract: exactly one attempt")
}

func TestPoolRetriesUpToMaxAttempts(t *testing.T) {
	q := NewJobQueue(8, testLogger())
	sender := newRecordingSender()
	sender.failFor[1] = errors.New("chat unreachable")

	pool := NewPool(q, sender, PoolConfig{
		WorkerCount:  1,
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
	}, testLogger())
	pool.Start()

	require.NoError(t, q.Enqueue(NewDeliveryJob(1, "doomed", nil)))

	q.Close()
	pool.Stop()

	assert.Equal(t, 3, sender.attemptCount(1))
	assert.Empty(t, sender.delivered())
}

func TestPoolRetrySucceedsAfterTransientFailure(t *testing.T) {
	q := NewJobQueue(8, testLogger())

	var mu sync.Mutex
	calls := 0
	sender := senderFunc(func(ctx context.Context, chatID int64, text string) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return errors.New("transient failure")
		}
		return nil
	})

	pool := NewPool(q, sender, PoolConfig{
		WorkerCount:  1,
		MaxAttempts:  2,
		RetryBackoff: time.Millisecond,
	}, testLogger())
	pool.Start()

	require.NoError(t, q.Enqueue(NewDeliveryJob(1, "eventually delivered", nil)))

	q.Close()
	pool.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}

func TestPoolDefaultsInvalidConfig(t *testing.T) {
	q := NewJobQueue(1, testLogger())
	sender := newRecordingSender()

	pool := NewPool(q, sender, PoolConfig{WorkerCount: 0, MaxAttempts: 0}, testLogger())
	pool.Start()

	require.NoError(t, q.Enqueue(NewDeliveryJob(1, "still processed", nil)))

	q.Close()
	pool.Stop()

	assert.Equal(t, []int64{1}, sender.delivered())
}

// senderFunc adapts a function to the Sender interface.
type senderFunc func(ctx context.Context, chatID int64, text string) error

func (f senderFunc) Send(ctx context.Context, chatID int64, text string) error {
	return f(ctx, chatID, text)
}

func TestPoolStopDrainsBufferedJobs(t *testing.T) {
	q := NewJobQueue(32, testLogger())
	sender := newRecordingSender()

	pool := NewPool(q, sender, PoolConfig{
		WorkerCount:  2,
		MaxAttempts:  1,
		DrainTimeout: 5 * time.Second,
	}, testLogger())
	pool.Start()

	for i := int64(1); i <= 20; i++ {
		require.NoError(t, q.Enqueue(NewDeliveryJob(i, "buffered", nil)))
	}

	// Shutdown order mirrors the server: close the queue, then stop the
	// pool. Every job accepted before the close must still be attempted.
	q.Close()
	pool.Stop()

	assert.Len(t, sender.delivered(), 20)
}
