// Package api provides HTTP handlers for the notification-management
// surface, the event-ingest endpoint, and the websocket live channel.
package api
