package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// EventKind identifies the task mutation that triggered a notification.
// The enumeration is closed: every switch over it covers all values, so a
// new kind cannot be added without also deciding its notification mapping
// and message template.
type EventKind string

// Possible event kinds
const (
	EventTaskCreated   EventKind = "task_created"
	EventTaskUpdated   EventKind = "task_updated"
	EventTaskCompleted EventKind = "task_completed"
	EventCommentAdded  EventKind = "comment_added"
	EventTaskOverdue   EventKind = "task_overdue"
)

// Valid reports whether k is one of the known event kinds.
func (k EventKind) Valid() bool {
	switch k {
	case EventTaskCreated, EventTaskUpdated, EventTaskCompleted, EventCommentAdded, EventTaskOverdue:
		return true
	}
	return false
}

// NotificationKind maps the event to the kind recorded on the stored
// notification. Task creation is experienced by the recipient as an
// assignment.
func (k EventKind) NotificationKind() NotificationKind {
	switch k {
	case EventTaskCreated:
		return KindTaskAssigned
	case EventTaskUpdated:
		return KindTaskUpdated
	case EventTaskCompleted:
		return KindTaskCompleted
	case EventCommentAdded:
		return KindCommentAdded
	case EventTaskOverdue:
		return KindTaskOverdue
	default:
		return KindTaskUpdated
	}
}

// Title returns the fixed notification title for the event kind.
func (k EventKind) Title() string {
	switch k {
	case EventTaskCreated:
		return "New task assigned"
	case EventTaskUpdated:
		return "Task updated"
	case EventTaskCompleted:
		return "Task completed"
	case EventCommentAdded:
		return "New comment"
	case EventTaskOverdue:
		return "Task overdue"
	default:
		return "Task update"
	}
}

// Message builds the human-readable notification body for the event kind,
// incorporating the task title.
func (k EventKind) Message(taskTitle string) string {
	switch k {
	case EventTaskCreated:
		return fmt.Sprintf("You have been assigned a new task: %s", taskTitle)
	case EventTaskUpdated:
		return fmt.Sprintf("Task updated: %s", taskTitle)
	case EventTaskCompleted:
		return fmt.Sprintf("Task completed: %s", taskTitle)
	case EventCommentAdded:
		return fmt.Sprintf("New comment on task: %s", taskTitle)
	case EventTaskOverdue:
		return fmt.Sprintf("Task %q is overdue", taskTitle)
	default:
		return fmt.Sprintf("Task update: %s", taskTitle)
	}
}

// Event is a task-mutation notice fed into the delivery router. It carries a
// snapshot of the task at mutation time so routing never has to read the
// task store on the request path.
type Event struct {
	Kind      EventKind    `json:"kind"`
	Task      TaskSnapshot `json:"task"`
	Actor     uuid.UUID    `json:"actor,omitempty"`
	OldStatus TaskStatus   `json:"old_status,omitempty"`
	NewStatus TaskStatus   `json:"new_status,omitempty"`
}

// Validate checks that the event carries enough data to be routed.
func (e *Event) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEventKind, e.Kind)
	}
	if e.Task.ID == 0 {
		return ErrMissingTask
	}
	if e.Task.AssignedTo == uuid.Nil && e.Task.CreatedBy == uuid.Nil {
		return ErrNoRecipients
	}
	return nil
}
