package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyRecipientID     = errors.New("notification recipient ID cannot be empty")
	ErrInvalidKind          = errors.New("invalid notification kind")
	ErrEmptyTitle           = errors.New("notification title cannot be empty")
	ErrEmptyMessage         = errors.New("notification message cannot be empty")
	ErrInconsistentReadTime = errors.New("read timestamp must be set if and only if the notification is read")
)

// NotificationKind identifies why a notification was generated.
type NotificationKind string

// Possible notification kinds. The set is closed; anything else fails
// validation.
const (
	KindTaskAssigned  NotificationKind = "task_assigned"
	KindTaskCompleted NotificationKind = "task_completed"
	KindTaskOverdue   NotificationKind = "task_overdue"
	KindTaskUpdated   NotificationKind = "task_updated"
	KindCommentAdded  NotificationKind = "comment_added"
)

// Valid reports whether k is one of the known notification kinds.
func (k NotificationKind) Valid() bool {
	switch k {
	case KindTaskAssigned, KindTaskCompleted, KindTaskOverdue, KindTaskUpdated, KindCommentAdded:
		return true
	}
	return false
}

// Notification represents one message delivered (or pending) to one user.
// Kind, Title, Message, and UserID are immutable after creation; only the
// read state (IsRead/ReadAt) ever changes.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`

	// TaskID is a weak reference: the task may be deleted independently of
	// the notification history, so it is optional and never dereferenced
	// without a nil check.
	TaskID *int64 `json:"task_id,omitempty"`
}

// NewNotification creates an unread Notification for the given recipient.
// It generates a new UUID and sets the creation timestamp.
// Returns an error if validation fails.
func NewNotification(
	recipient uuid.UUID,
	kind NotificationKind,
	title, message string,
	taskID *int64,
) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    recipient,
		Kind:      kind,
		Title:     title,
		Message:   message,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
		TaskID:    taskID,
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}

	return n, nil
}

// Validate checks if the Notification has valid data.
// Returns an error if any field fails validation.
func (n *Notification) Validate() error {
	if n.UserID == uuid.Nil {
		return ErrEmptyRecipientID
	}

	if !n.Kind.Valid() {
		return ErrInvalidKind
	}

	if n.Title == "" {
		return ErrEmptyTitle
	}

	if n.Message == "" {
		return ErrEmptyMessage
	}

	// ReadAt tracks IsRead exactly. Both set or both unset.
	if n.IsRead != (n.ReadAt != nil) {
		return ErrInconsistentReadTime
	}

	return nil
}

// MarkRead sets the read flag and timestamp. Marking an already-read
// notification is a no-op, which keeps the operation idempotent.
func (n *Notification) MarkRead(now time.Time) {
	if n.IsRead {
		return
	}
	n.IsRead = true
	t := now.UTC()
	n.ReadAt = &t
}
