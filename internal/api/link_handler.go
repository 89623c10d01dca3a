package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// UsernameRequest carries the username a chat supplied to complete its link
// flow.
type UsernameRequest struct {
	Username string `json:"username"`
}

// LinkStatusResponse reports a chat's current link state.
type LinkStatusResponse struct {
	ChatID int64  `json:"chat_id"`
	State  string `json:"state"`
}

// LinkHandler exposes the chat account-link state machine to the bot
// process. The bot parses chat commands itself and calls these endpoints
// with the chat identifier it is serving; command parsing never happens
// here.
type LinkHandler struct {
	linkService *service.LinkService
	logger      *slog.Logger
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(linkService *service.LinkService, logger *slog.Logger) *LinkHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for LinkHandler")
	}

	return &LinkHandler{
		linkService: linkService,
		logger:      logger.With(slog.String("component", "link_handler")),
	}
}

// Begin handles POST /links/{chatID}/begin requests, moving the chat into
// the awaiting_username state.
func (h *LinkHandler) Begin(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.linkService.Begin(r.Context(), chatID); err != nil {
		if errors.Is(err, domain.ErrLinkAlreadyLinked) {
			shared.RespondWithError(w, r, http.StatusConflict, "Chat is already linked to an account")
			return
		}
		shared.RespondWithErrorAndLog(
			w, r,
			MapErrorToStatusCode(err),
			GetSafeErrorMessage(err),
			err,
		)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LinkStatusResponse{
		ChatID: chatID,
		State:  string(domain.LinkStateAwaitingUsername),
	})
}

// ProvideUsername handles POST /links/{chatID}/username requests, completing
// the link flow with the supplied account username.
func (h *LinkHandler) ProvideUsername(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	chatID, ok := chatIDFromRequest(w, r)
	if !ok {
		return
	}

	var req UsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid JSON")
		return
	}

	link, err := h.linkService.ProvideUsername(r.Context(), chatID, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyUsername):
			shared.RespondWithError(w, r, http.StatusBadRequest, "Username cannot be empty")
		case errors.Is(err, service.ErrUnknownUsername):
			shared.RespondWithError(w, r, http.StatusNotFound, "Username does not match any account")
		case errors.Is(err, domain.ErrLinkNotAwaiting):
			shared.RespondWithError(w, r, http.StatusConflict, "Chat has not started the link flow")
		default:
			log.Error("failed to complete link flow", "chat_id", chatID, "error", err)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "An internal error occurred")
		}
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LinkStatusResponse{
		ChatID: chatID,
		State:  string(link.State),
	})
}

// Status handles GET /links/{chatID} requests. Unknown chats are reported as
// unlinked.
func (h *LinkHandler) Status(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDFromRequest(w, r)
	if !ok {
		return
	}

	state, err := h.linkService.Status(r.Context(), chatID)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r,
			MapErrorToStatusCode(err),
			GetSafeErrorMessage(err),
			err,
		)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LinkStatusResponse{
		ChatID: chatID,
		State:  string(state),
	})
}

// Unlink handles DELETE /links/{chatID} requests. Safe for chats in any
// state, including ones never seen before.
func (h *LinkHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.linkService.Unlink(r.Context(), chatID); err != nil {
		shared.RespondWithErrorAndLog(
			w, r,
			MapErrorToStatusCode(err),
			GetSafeErrorMessage(err),
			err,
		)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LinkStatusResponse{
		ChatID: chatID,
		State:  string(domain.LinkStateUnlinked),
	})
}

// chatIDFromRequest parses the chatID path parameter, writing a 400 response
// on failure.
func chatIDFromRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid chat ID")
		return 0, false
	}
	return chatID, true
}
