package hub

import "github.com/phrazzld/taskflow-api/internal/domain"

// Client-to-server message envelope. Only the type field is inspected.
type clientMessage struct {
	Type string `json:"type"`
}

// pongMessage answers a client ping.
type pongMessage struct {
	Type string `json:"type"`
}

// errorMessage is sent in reply to unparseable client input. The connection
// stays open.
type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// tasksMessage answers a get_tasks request with the user's task snapshots.
type tasksMessage struct {
	Type  string                 `json:"type"`
	Tasks []*domain.TaskSnapshot `json:"tasks"`
}

// NotificationPush is the unsolicited server-to-client push sent when an
// event is routed to a connected recipient.
type NotificationPush struct {
	Type      string `json:"type"`
	Event     string `json:"event"`
	TaskID    int64  `json:"task_id"`
	TaskTitle string `json:"task_title"`
	Message   string `json:"message"`
}

// NewNotificationPush builds the push payload for an event routed to a
// recipient.
func NewNotificationPush(kind domain.EventKind, task domain.TaskSnapshot, message string) NotificationPush {
	return NotificationPush{
		Type:      "notification",
		Event:     string(kind),
		TaskID:    task.ID,
		TaskTitle: task.Title,
		Message:   message,
	}
}
