package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/delivery"
	"github.com/phrazzld/taskflow-api/internal/hub"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/phrazzld/taskflow-api/internal/platform/telegram"
	"github.com/phrazzld/taskflow-api/internal/scheduler"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// application holds the wired-up dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	hub      *hub.Hub
	jobQueue *worker.JobQueue
	pool     *worker.Pool
	sweeper  *scheduler.OverdueSweeper

	notificationService *service.NotificationService
	linkService         *service.LinkService
	jwtService          auth.JWTService
	router              *delivery.Router
	taskReader          *postgres.PostgresTaskReader
}

// newApplication wires every component of the notification core together.
// Construction order follows the data flow: stores, then the push/queue
// infrastructure, then the router that fans out into it, then the
// scheduler that feeds the router.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*application, error) {
	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := ensureMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	notificationStore := postgres.NewPostgresNotificationStore(db)
	taskReader := postgres.NewPostgresTaskReader(db)
	linkStore := postgres.NewPostgresLinkStore(db)

	liveHub := hub.New(logger)
	jobQueue := worker.NewJobQueue(cfg.Delivery.QueueSize, logger)

	sender := telegram.NewSender(cfg.Telegram.BotToken, cfg.Telegram.APIBaseURL, logger)
	pool := worker.NewPool(jobQueue, sender, worker.PoolConfig{
		WorkerCount:  cfg.Delivery.WorkerCount,
		MaxAttempts:  cfg.Delivery.MaxAttempts,
		RetryBackoff: cfg.Delivery.RetryBackoff,
	}, logger)

	// An empty bot token disables the external channel: the router gets no
	// job writer, so linked users simply fall back to store + live push.
	var jobWriter worker.JobQueueWriter
	if cfg.Telegram.BotToken != "" {
		jobWriter = jobQueue
	}

	router := delivery.NewRouter(notificationStore, linkStore, liveHub, jobWriter, logger)

	sweeper := scheduler.NewOverdueSweeper(taskReader, router, scheduler.SweeperConfig{
		SweepInterval: cfg.Scheduler.SweepInterval,
	}, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	return &application{
		config:              cfg,
		logger:              logger,
		db:                  db,
		hub:                 liveHub,
		jobQueue:            jobQueue,
		pool:                pool,
		sweeper:             sweeper,
		notificationService: service.NewNotificationService(notificationStore, logger),
		linkService:         service.NewLinkService(linkStore, linkStore, logger),
		jwtService:          jwtService,
		router:              router,
		taskReader:          taskReader,
	}, nil
}

// Run starts the background components and the HTTP server, then blocks
// until the context is cancelled and shutdown completes.
func (app *application) Run(ctx context.Context) error {
	app.pool.Start()
	app.sweeper.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		app.cleanup()
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("http server shutdown failed", "error", err)
	}

	app.cleanup()
	return nil
}

// cleanup tears the background components down in dependency order:
// producers first (sweeper), then the queue so workers can drain, then the
// workers and the live connections, and finally the database.
func (app *application) cleanup() {
	app.sweeper.Stop()
	app.jobQueue.Close()
	app.pool.Stop()
	app.hub.Shutdown()

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}

	app.logger.Info("shutdown complete")
}
