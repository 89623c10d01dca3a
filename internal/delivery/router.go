// Package delivery contains the router that translates a task event into
// its three delivery effects: a persisted notification, a live push, and an
// external-channel delivery job.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/hub"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/phrazzld/taskflow-api/internal/worker"
)

// Broadcaster is the live-push side of the hub as seen by the router.
type Broadcaster interface {
	// Broadcast delivers the payload to every live connection of the user
	// and returns how many connections it reached. Zero is a successful
	// no-op (the user is offline).
	Broadcast(userID uuid.UUID, payload any) int
}

// Router is the single choke point between task mutations and notification
// delivery. For each resolved recipient it writes the durable notification
// first, then performs the best-effort pushes.
type Router struct {
	notifications store.NotificationStore
	links         store.LinkStore
	broadcaster   Broadcaster
	jobs          worker.JobQueueWriter
	logger        *slog.Logger
}

// NewRouter creates a Router. A nil jobs writer disables the external
// channel entirely; live push and the durable store are unaffected.
func NewRouter(
	notifications store.NotificationStore,
	links store.LinkStore,
	broadcaster Broadcaster,
	jobs worker.JobQueueWriter,
	logger *slog.Logger,
) *Router {
	return &Router{
		notifications: notifications,
		links:         links,
		broadcaster:   broadcaster,
		jobs:          jobs,
		logger:        logger.With("component", "delivery_router"),
	}
}

// Route resolves the event's recipients and performs all delivery effects
// for each of them. It returns the number of recipients whose notification
// record was written; push and external-delivery failures are logged and
// never propagated, since notification delivery is a side effect of the
// mutation, not a precondition for its success.
func (r *Router) Route(ctx context.Context, event domain.Event) (int, error) {
	if err := event.Validate(); err != nil {
		return 0, fmt.Errorf("rejecting event: %w", err)
	}

	log := logger.FromContextOrDefault(ctx, r.logger).With(
		"event_kind", event.Kind,
		"task_id", event.Task.ID,
	)

	notified := 0
	for _, recipient := range resolveRecipients(event.Task) {
		if r.notify(ctx, event, recipient, log) {
			notified++
		}
	}

	log.Debug("event routed", "recipients_notified", notified)
	return notified, nil
}

// resolveRecipients returns the users to notify for a task event: the
// assignee, plus the creator when they are a different person. A recipient
// never receives the same event twice.
func resolveRecipients(task domain.TaskSnapshot) []uuid.UUID {
	var recipients []uuid.UUID
	if task.AssignedTo != uuid.Nil {
		recipients = append(recipients, task.AssignedTo)
	}
	if task.CreatedBy != uuid.Nil && task.CreatedBy != task.AssignedTo {
		recipients = append(recipients, task.CreatedBy)
	}
	return recipients
}

// notify performs the three delivery effects for one recipient. The store
// write gates the rest: without a durable record there is nothing for a
// push to reference. Broadcast and enqueue failures are isolated so one
// recipient's trouble never blocks another.
func (r *Router) notify(
	ctx context.Context,
	event domain.Event,
	recipient uuid.UUID,
	log *slog.Logger,
) bool {
	message := event.Kind.Message(event.Task.Title)
	taskID := event.Task.ID

	notification, err := domain.NewNotification(
		recipient,
		event.Kind.NotificationKind(),
		event.Kind.Title(),
		message,
		&taskID,
	)
	if err != nil {
		log.Error("failed to build notification",
			"recipient", recipient,
			"error", err)
		return false
	}

	if err := r.notifications.Create(ctx, notification); err != nil {
		log.Error("failed to persist notification",
			"recipient", recipient,
			"error", err)
		return false
	}

	// Live push: best-effort. Zero live connections means the recipient is
	// offline, which is not a failure.
	reached := r.broadcaster.Broadcast(
		recipient,
		hub.NewNotificationPush(event.Kind, event.Task, message),
	)
	log.Debug("live push dispatched",
		"recipient", recipient,
		"connections_reached", reached)

	r.enqueueExternal(ctx, recipient, message, &taskID, log)

	return true
}

// enqueueExternal submits an external-channel job for the recipient, if the
// recipient has linked a chat. A missing link is a silent skip; a refused
// submission is logged but never escalated.
func (r *Router) enqueueExternal(
	ctx context.Context,
	recipient uuid.UUID,
	message string,
	taskID *int64,
	log *slog.Logger,
) {
	if r.jobs == nil {
		// External channel disabled.
		return
	}

	chatID, err := r.links.ResolveChatID(ctx, recipient)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// No external delivery for this user.
			return
		}
		log.Error("failed to resolve external handle",
			"recipient", recipient,
			"error", err)
		return
	}

	job := worker.NewDeliveryJob(chatID, message, taskID)
	if err := r.jobs.Enqueue(job); err != nil {
		log.Error("failed to enqueue delivery job",
			"recipient", recipient,
			"chat_id", chatID,
			"job_id", job.ID,
			"error", err)
		return
	}

	log.Debug("delivery job submitted",
		"recipient", recipient,
		"chat_id", chatID,
		"job_id", job.ID)
}
