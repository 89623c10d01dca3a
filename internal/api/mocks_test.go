package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/phrazzld/taskflow-api/internal/worker"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// withUser mounts the handler behind a stand-in for the auth middleware that
// injects the user ID the way Authenticate would.
func withUser(userID uuid.UUID, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// newAuthedRouter builds a chi router whose requests carry the user identity.
func newAuthedRouter(userID uuid.UUID, register func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Group(register)
	return withUser(userID, r)
}

// memNotificationStore is an in-memory NotificationStore for handler tests.
type memNotificationStore struct {
	notifications map[uuid.UUID]*domain.Notification
	createErr     error
}

func newMemNotificationStore() *memNotificationStore {
	return &memNotificationStore{notifications: make(map[uuid.UUID]*domain.Notification)}
}

func (m *memNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.notifications[n.ID] = n
	return nil
}

func (m *memNotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, store.ErrNotificationNotFound
	}
	copied := *n
	return &copied, nil
}

func (m *memNotificationStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	n, ok := m.notifications[id]
	if !ok {
		return store.ErrNotificationNotFound
	}
	n.MarkRead(time.Now().UTC())
	return nil
}

func (m *memNotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.MarkRead(time.Now().UTC())
			count++
		}
	}
	return count, nil
}

func (m *memNotificationStore) ListUnread(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			copied := *n
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memNotificationStore) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	list, _ := m.ListUnread(ctx, userID)
	return int64(len(list)), nil
}

// memLinkStore is an in-memory LinkStore for handler tests.
type memLinkStore struct {
	links map[int64]*domain.TelegramLink
	chats map[uuid.UUID]int64
}

func newMemLinkStore() *memLinkStore {
	return &memLinkStore{
		links: make(map[int64]*domain.TelegramLink),
		chats: make(map[uuid.UUID]int64),
	}
}

func (m *memLinkStore) ResolveChatID(ctx context.Context, userID uuid.UUID) (int64, error) {
	chatID, ok := m.chats[userID]
	if !ok {
		return 0, store.ErrLinkNotFound
	}
	return chatID, nil
}

func (m *memLinkStore) GetByChatID(ctx context.Context, chatID int64) (*domain.TelegramLink, error) {
	link, ok := m.links[chatID]
	if !ok {
		return nil, store.ErrLinkNotFound
	}
	copied := *link
	return &copied, nil
}

func (m *memLinkStore) Save(ctx context.Context, link *domain.TelegramLink) error {
	copied := *link
	m.links[link.ChatID] = &copied
	if link.Linked() {
		m.chats[link.UserID] = link.ChatID
	} else {
		for userID, chatID := range m.chats {
			if chatID == link.ChatID {
				delete(m.chats, userID)
			}
		}
	}
	return nil
}

// memUserDirectory resolves usernames from a fixed map.
type memUserDirectory struct {
	users map[string]uuid.UUID
}

func (m *memUserDirectory) GetIDByUsername(ctx context.Context, username string) (uuid.UUID, error) {
	id, ok := m.users[username]
	if !ok {
		return uuid.Nil, store.ErrUserNotFound
	}
	return id, nil
}

// nopBroadcaster counts pushes without a live hub.
type nopBroadcaster struct {
	pushes int
}

func (b *nopBroadcaster) Broadcast(userID uuid.UUID, payload any) int {
	b.pushes++
	return 0
}

// memJobWriter records enqueued jobs.
type memJobWriter struct {
	jobs []worker.DeliveryJob
}

func (m *memJobWriter) Enqueue(job worker.DeliveryJob) error {
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *memJobWriter) Close() {}
