// Package service contains the user-facing application services sitting
// between the HTTP layer and the stores.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// NotificationService enforces the recipient-only ownership invariant on
// top of the notification store. Every operation takes the calling user's
// identity and scopes itself to that user; there is no way to act on
// another user's notifications through this service.
type NotificationService struct {
	notifications store.NotificationStore
	logger        *slog.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(
	notifications store.NotificationStore,
	logger *slog.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		logger:        logger.With("component", "notification_service"),
	}
}

// MarkRead marks one notification as read on behalf of the user.
// Returns store.ErrNotificationNotFound if the ID is unknown and
// store.ErrForbidden if the notification belongs to someone else. Marking
// an already-read notification is a successful no-op.
func (s *NotificationService) MarkRead(
	ctx context.Context,
	user uuid.UUID,
	notificationID uuid.UUID,
) error {
	n, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}

	// Ownership check before any mutation. The existence of a foreign
	// notification is acknowledged with Forbidden, not hidden behind
	// NotFound, matching the management surface's error contract.
	if n.UserID != user {
		s.logger.Warn("mark-read rejected for foreign notification",
			"notification_id", notificationID,
			"owner", n.UserID,
			"requester", user)
		return store.ErrForbidden
	}

	if n.IsRead {
		return nil
	}

	if err := s.notifications.MarkRead(ctx, notificationID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	return nil
}

// MarkAllRead marks every unread notification owned by the user as read and
// returns the number affected. Zero matches is a successful no-op.
func (s *NotificationService) MarkAllRead(ctx context.Context, user uuid.UUID) (int64, error) {
	count, err := s.notifications.MarkAllRead(ctx, user)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	s.logger.Debug("marked all notifications read",
		"user_id", user,
		"count", count)
	return count, nil
}

// ListUnread returns the user's unread notifications, newest first.
func (s *NotificationService) ListUnread(
	ctx context.Context,
	user uuid.UUID,
) ([]*domain.Notification, error) {
	return s.notifications.ListUnread(ctx, user)
}

// CountUnread returns the user's unread notification count.
func (s *NotificationService) CountUnread(ctx context.Context, user uuid.UUID) (int64, error) {
	return s.notifications.CountUnread(ctx, user)
}
