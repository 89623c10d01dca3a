package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task as reported by the
// task CRUD system.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Open reports whether the task still counts as active work. Completed and
// cancelled tasks are closed and never considered overdue.
func (s TaskStatus) Open() bool {
	return s == TaskStatusPending || s == TaskStatusInProgress
}

// TaskPriority represents the priority of a task.
type TaskPriority string

// Possible task priority values
const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// TaskSnapshot is a read-only view of a task as supplied by the CRUD layer
// alongside a mutation notice, or loaded by the overdue sweep. The
// notification core never writes tasks.
type TaskSnapshot struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	AssignedTo  uuid.UUID    `json:"assigned_to"`
	CreatedBy   uuid.UUID    `json:"created_by"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
}

// IsOverdue reports whether the task has a due date in the past while still
// being open.
func (t *TaskSnapshot) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || !t.Status.Open() {
		return false
	}
	return now.After(*t.DueDate)
}
