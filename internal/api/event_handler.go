package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/delivery"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// EventRequest is the task-mutation notice posted by the CRUD layer after
// every mutation that should notify.
type EventRequest struct {
	Kind      string       `json:"kind"       validate:"required,oneof=task_created task_updated task_completed comment_added task_overdue"`
	Task      TaskSnapshot `json:"task"       validate:"required"`
	Actor     string       `json:"actor,omitempty"`
	OldStatus string       `json:"old_status,omitempty"`
	NewStatus string       `json:"new_status,omitempty"`
}

// TaskSnapshot is the wire form of the task state at mutation time.
type TaskSnapshot struct {
	ID          int64      `json:"id"          validate:"required"`
	Title       string     `json:"title"       validate:"required"`
	Description string     `json:"description,omitempty"`
	AssignedTo  string     `json:"assigned_to" validate:"required,uuid"`
	CreatedBy   string     `json:"created_by"  validate:"required,uuid"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// EventResponse acknowledges an accepted event.
type EventResponse struct {
	Status             string `json:"status"`
	RecipientsNotified int    `json:"recipients_notified"`
}

// EventHandler accepts task-mutation notices and hands them to the delivery
// router. The caller's mutation has already succeeded by the time this
// endpoint is hit, so delivery failures past the notification write are
// never surfaced here.
type EventHandler struct {
	router   *delivery.Router
	validate *validator.Validate
	logger   *slog.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(router *delivery.Router, logger *slog.Logger) *EventHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for EventHandler")
	}

	return &EventHandler{
		router:   router,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "event_handler")),
	}
}

// IngestEvent handles POST /events requests.
func (h *EventHandler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		log.Debug("event request failed validation", "error", err)
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid event data")
		return
	}

	event, err := eventFromRequest(&req)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid event data")
		return
	}

	notified, err := h.router.Route(r.Context(), event)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r,
			MapErrorToStatusCode(err),
			GetSafeErrorMessage(err),
			err,
		)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, EventResponse{
		Status:             "accepted",
		RecipientsNotified: notified,
	})
}

// eventFromRequest converts the wire form into a domain event.
func eventFromRequest(req *EventRequest) (domain.Event, error) {
	assignedTo, err := uuid.Parse(req.Task.AssignedTo)
	if err != nil {
		return domain.Event{}, err
	}

	createdBy, err := uuid.Parse(req.Task.CreatedBy)
	if err != nil {
		return domain.Event{}, err
	}

	var actor uuid.UUID
	if req.Actor != "" {
		actor, err = uuid.Parse(req.Actor)
		if err != nil {
			return domain.Event{}, err
		}
	}

	return domain.Event{
		Kind: domain.EventKind(req.Kind),
		Task: domain.TaskSnapshot{
			ID:          req.Task.ID,
			Title:       req.Task.Title,
			Description: req.Task.Description,
			AssignedTo:  assignedTo,
			CreatedBy:   createdBy,
			Status:      domain.TaskStatus(req.Task.Status),
			Priority:    domain.TaskPriority(req.Task.Priority),
			DueDate:     req.Task.DueDate,
		},
		Actor:     actor,
		OldStatus: domain.TaskStatus(req.OldStatus),
		NewStatus: domain.TaskStatus(req.NewStatus),
	}, nil
}
