package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
)

func newNotificationTestServer(userID uuid.UUID, notifications *memNotificationStore) http.Handler {
	svc := service.NewNotificationService(notifications, testLogger())
	handler := NewNotificationHandler(svc, testLogger())

	return newAuthedRouter(userID, func(r chi.Router) {
		r.Get("/notifications/unread", handler.ListUnread)
		r.Get("/notifications/unread/count", handler.CountUnread)
		r.Post("/notifications/{id}/read", handler.MarkRead)
		r.Post("/notifications/read-all", handler.MarkAllRead)
	})
}

func seedNotification(t *testing.T, notifications *memNotificationStore, owner uuid.UUID) *domain.Notification {
	t.Helper()
	taskID := int64(7)
	n, err := domain.NewNotification(owner, domain.KindTaskAssigned, "New task assigned", "You have been assigned a new task: Write report", &taskID)
	require.NoError(t, err)
	notifications.notifications[n.ID] = n
	return n
}

func TestNotificationHandlerListUnread(t *testing.T) {
	userID := uuid.New()
	notifications := newMemNotificationStore()
	server := newNotificationTestServer(userID, notifications)

	seedNotification(t, notifications, userID)
	seedNotification(t, notifications, uuid.New()) // someone else's

	req := httptest.NewRequest(http.MethodGet, "/notifications/unread", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body []NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1, "only the caller's notifications are visible")
	assert.Equal(t, "task_assigned", body[0].Kind)
	assert.Equal(t, "New task assigned", body[0].Title)
	assert.False(t, body[0].IsRead)
	require.NotNil(t, body[0].TaskID)
	assert.Equal(t, int64(7), *body[0].TaskID)
}

func TestNotificationHandlerListUnreadEmpty(t *testing.T) {
	server := newNotificationTestServer(uuid.New(), newMemNotificationStore())

	req := httptest.NewRequest(http.MethodGet, "/notifications/unread", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// Empty backlog serializes as an empty array, never null
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestNotificationHandlerCountUnread(t *testing.T) {
	userID := uuid.New()
	notifications := newMemNotificationStore()
	server := newNotificationTestServer(userID, notifications)

	seedNotification(t, notifications, userID)
	seedNotification(t, notifications, userID)

	req := httptest.NewRequest(http.MethodGet, "/notifications/unread/count", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body UnreadCountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.UnreadCount)
}

func TestNotificationHandlerMarkRead(t *testing.T) {
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		notifications := newMemNotificationStore()
		server := newNotificationTestServer(userID, notifications)
		n := seedNotification(t, notifications, userID)

		req := httptest.NewRequest(http.MethodPost, "/notifications/"+n.ID.String()+"/read", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, notifications.notifications[n.ID].IsRead)
	})

	t.Run("repeat is idempotent", func(t *testing.T) {
		notifications := newMemNotificationStore()
		server := newNotificationTestServer(userID, notifications)
		n := seedNotification(t, notifications, userID)

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodPost, "/notifications/"+n.ID.String()+"/read", nil)
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("foreign notification", func(t *testing.T) {
		notifications := newMemNotificationStore()
		server := newNotificationTestServer(userID, notifications)
		n := seedNotification(t, notifications, uuid.New())

		req := httptest.NewRequest(http.MethodPost, "/notifications/"+n.ID.String()+"/read", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, notifications.notifications[n.ID].IsRead)
	})

	t.Run("unknown notification", func(t *testing.T) {
		server := newNotificationTestServer(userID, newMemNotificationStore())

		req := httptest.NewRequest(http.MethodPost, "/notifications/"+uuid.NewString()+"/read", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed ID", func(t *testing.T) {
		server := newNotificationTestServer(userID, newMemNotificationStore())

		req := httptest.NewRequest(http.MethodPost, "/notifications/not-a-uuid/read", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestNotificationHandlerMarkAllRead(t *testing.T) {
	userID := uuid.New()
	other := uuid.New()
	notifications := newMemNotificationStore()
	server := newNotificationTestServer(userID, notifications)

	seedNotification(t, notifications, userID)
	seedNotification(t, notifications, userID)
	foreign := seedNotification(t, notifications, other)

	req := httptest.NewRequest(http.MethodPost, "/notifications/read-all", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body MarkAllReadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.MarkedCount)

	// The other user's backlog is untouched
	assert.False(t, notifications.notifications[foreign.ID].IsRead)
}

func TestNotificationHandlerMissingUser(t *testing.T) {
	// Mount the handler without the identity-injecting middleware
	svc := service.NewNotificationService(newMemNotificationStore(), testLogger())
	handler := NewNotificationHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Get("/notifications/unread", handler.ListUnread)

	req := httptest.NewRequest(http.MethodGet, "/notifications/unread", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
