package worker

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryJob is one unit of external-channel work: a single message for a
// single chat. Jobs are handed to exactly one worker and discarded after
// processing, successful or not.
type DeliveryJob struct {
	// ID identifies the job in diagnostics.
	ID uuid.UUID

	// ChatID is the external chat handle to deliver to.
	ChatID int64

	// Message is the text to send.
	Message string

	// TaskID optionally references the task that triggered the job.
	TaskID *int64

	// EnqueuedAt records when the job entered the queue.
	EnqueuedAt time.Time
}

// NewDeliveryJob creates a job for the given chat and message.
func NewDeliveryJob(chatID int64, message string, taskID *int64) DeliveryJob {
	return DeliveryJob{
		ID:         uuid.New(),
		ChatID:     chatID,
		Message:    message,
		TaskID:     taskID,
		EnqueuedAt: time.Now().UTC(),
	}
}
