package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskflow-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskflow-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	notificationHandler := api.NewNotificationHandler(app.notificationService, app.logger)
	eventHandler := api.NewEventHandler(app.router, app.logger)
	linkHandler := api.NewLinkHandler(app.linkService, app.logger)
	wsHandler := api.NewWSHandler(app.hub, app.taskReader, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Notification management endpoints, scoped to the caller
			r.Get("/notifications/unread", notificationHandler.ListUnread)
			r.Get("/notifications/unread/count", notificationHandler.CountUnread)
			r.Post("/notifications/{id}/read", notificationHandler.MarkRead)
			r.Post("/notifications/read-all", notificationHandler.MarkAllRead)

			// Event ingest, called by the task CRUD layer after mutations
			r.Post("/events", eventHandler.IngestEvent)

			// Chat link state machine, called by the bot process. The bot
			// parses chat commands; these endpoints only drive state.
			r.Post("/links/{chatID}/begin", linkHandler.Begin)
			r.Post("/links/{chatID}/username", linkHandler.ProvideUsername)
			r.Get("/links/{chatID}", linkHandler.Status)
			r.Delete("/links/{chatID}", linkHandler.Unlink)
		})
	})

	// Live channel; the auth middleware accepts the token from the query
	// string for websocket upgrades.
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/ws/tasks", wsHandler.Serve)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
