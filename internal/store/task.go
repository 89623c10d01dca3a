package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// TaskReader is the read-only view of the task tables owned by the CRUD
// system. The notification core never mutates tasks; it only loads
// snapshots for the overdue sweep and for live-channel task listings.
type TaskReader interface {
	// ListOpenOverdue returns snapshots of every task whose due date is
	// before now and whose status is still open (pending or in progress).
	ListOpenOverdue(ctx context.Context, now time.Time) ([]*domain.TaskSnapshot, error)

	// ListByAssignee returns snapshots of the tasks currently assigned to
	// the user, ordered newest-first by creation time.
	ListByAssignee(ctx context.Context, userID uuid.UUID) ([]*domain.TaskSnapshot, error)
}
