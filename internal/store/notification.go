package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// NotificationStore defines the persistence interface for notifications.
// Implementations must scope every read to the owning user; a notification
// is never visible to anyone but its recipient.
type NotificationStore interface {
	// Create saves a new notification to the store.
	// Returns ErrInvalidEntity (wrapping a validation error) if the
	// notification fails domain validation.
	Create(ctx context.Context, n *domain.Notification) error

	// GetByID retrieves a notification by its unique ID regardless of
	// owner. Callers enforcing ownership (the service layer) compare the
	// recipient themselves so they can distinguish Forbidden from NotFound.
	// Returns ErrNotificationNotFound if no notification exists with the ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)

	// MarkRead sets the read flag and read timestamp on the notification.
	// Marking an already-read notification leaves its original read
	// timestamp in place. Returns ErrNotificationNotFound if the ID is
	// unknown.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// MarkAllRead marks every unread notification owned by the user as
	// read and returns the number of rows affected. Zero matches is a
	// successful no-op.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)

	// ListUnread returns the user's unread notifications ordered
	// newest-first by creation time.
	ListUnread(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)

	// CountUnread returns the number of unread notifications for the user.
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}
