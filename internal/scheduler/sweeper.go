// Package scheduler runs the periodic overdue-task sweep, decoupled from
// any request, and feeds the resulting events into the delivery router.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// EventRouter is the slice of the delivery router the sweeper needs.
type EventRouter interface {
	Route(ctx context.Context, event domain.Event) (int, error)
}

// SweeperConfig holds configuration for the overdue sweeper.
type SweeperConfig struct {
	// SweepInterval is the cadence of the overdue scan. If zero, defaults
	// to one hour.
	SweepInterval time.Duration
}

// OverdueSweeper periodically scans for tasks whose due date has passed
// while still open and routes one task_overdue event per task. Every sweep
// re-scans the full overdue set: a task that stays overdue across sweeps is
// re-notified each time. That is the documented behavior, not an accident;
// de-duplication would need an explicit notified-cursor design.
type OverdueSweeper struct {
	tasks  store.TaskReader
	router EventRouter
	config SweeperConfig
	logger *slog.Logger

	// now is injectable for tests.
	now func() time.Time

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewOverdueSweeper creates a sweeper over the given task reader and router.
func NewOverdueSweeper(
	tasks store.TaskReader,
	router EventRouter,
	config SweeperConfig,
	logger *slog.Logger,
) *OverdueSweeper {
	if config.SweepInterval <= 0 {
		config.SweepInterval = time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &OverdueSweeper{
		tasks:  tasks,
		router: router,
		config: config,
		logger: logger.With("component", "overdue_sweeper"),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the sweep loop.
func (s *OverdueSweeper) Start() {
	s.wg.Add(1)
	go s.loop()
	s.logger.Info("overdue sweeper started", "interval", s.config.SweepInterval)
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *OverdueSweeper) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logger.Info("overdue sweeper stopped")
}

func (s *OverdueSweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunSweep(s.ctx); err != nil {
				s.logger.Error("overdue sweep failed", "error", err)
			}
		}
	}
}

// RunSweep executes one sweep immediately and returns the number of overdue
// tasks routed. A routing error for one task does not abort the sweep for
// the remaining tasks; the error count is logged and the sweep completes.
func (s *OverdueSweeper) RunSweep(ctx context.Context) (int, error) {
	now := s.now().UTC()

	overdue, err := s.tasks.ListOpenOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	notified := 0
	failed := 0
	for _, task := range overdue {
		event := domain.Event{
			Kind: domain.EventTaskOverdue,
			Task: *task,
		}

		if _, err := s.router.Route(ctx, event); err != nil {
			failed++
			s.logger.Error("failed to route overdue event",
				"task_id", task.ID,
				"error", err)
			continue
		}
		notified++
	}

	s.logger.Info("overdue sweep completed",
		"overdue_tasks", len(overdue),
		"notified", notified,
		"failed", failed)

	return notified, nil
}
