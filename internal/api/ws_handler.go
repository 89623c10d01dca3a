package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/hub"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// WSHandler upgrades authenticated requests to websocket connections and
// registers them with the hub.
type WSHandler struct {
	hub      *hub.Hub
	tasks    store.TaskReader
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(h *hub.Hub, tasks store.TaskReader, logger *slog.Logger) *WSHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for WSHandler")
	}

	return &WSHandler{
		hub:   h,
		tasks: tasks,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin enforcement happens at the edge; the API trusts its
			// proxy the same way the REST endpoints do.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws_handler")),
	}
}

// Serve handles GET /ws/tasks requests. The auth middleware has already
// placed the user ID in the context; unauthenticated requests never reach
// this point.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		log.Debug("websocket upgrade failed", "error", err, "user_id", userID)
		return
	}

	client := hub.NewClient(h.hub, conn, userID, h.tasks, log)
	h.hub.Register(userID, client)

	log.Info("websocket connected", "user_id", userID)

	// Run lives past this handler's return, so it cannot use the request
	// context: chi cancels that as soon as the handler exits. The client's
	// own lifecycle (disconnect, hub shutdown) bounds the goroutine.
	go client.Run(context.Background())
}
