package service

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeNotificationStore is an in-memory NotificationStore.
type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*domain.Notification

	markReadErr error
	markedRead  []uuid.UUID
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{
		notifications: make(map[uuid.UUID]*domain.Notification),
	}
}

func (f *fakeNotificationStore) put(n *domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications[n.ID] = n
}

func (f *fakeNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	f.put(n)
	return nil
}

func (f *fakeNotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok {
		return nil, store.ErrNotificationNotFound
	}
	copied := *n
	return &copied, nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markReadErr != nil {
		return f.markReadErr
	}
	n, ok := f.notifications[id]
	if !ok {
		return store.ErrNotificationNotFound
	}
	n.MarkRead(time.Now().UTC())
	f.markedRead = append(f.markedRead, id)
	return nil
}

func (f *fakeNotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.IsRead {
			n.MarkRead(time.Now().UTC())
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) ListUnread(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Notification
	for _, n := range f.notifications {
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

func (f *fakeNotificationStore) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	list, _ := f.ListUnread(ctx, userID)
	return int64(len(list)), nil
}

// fakeLinkStore is an in-memory LinkStore keyed by chat ID.
type fakeLinkStore struct {
	mu    sync.Mutex
	links map[int64]*domain.TelegramLink

	saveErr error
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{links: make(map[int64]*domain.TelegramLink)}
}

func (f *fakeLinkStore) ResolveChatID(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, link := range f.links {
		if link.Linked() && link.UserID == userID {
			return link.ChatID, nil
		}
	}
	return 0, store.ErrLinkNotFound
}

func (f *fakeLinkStore) GetByChatID(ctx context.Context, chatID int64) (*domain.TelegramLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.links[chatID]
	if !ok {
		return nil, store.ErrLinkNotFound
	}
	copied := *link
	return &copied, nil
}

func (f *fakeLinkStore) Save(ctx context.Context, link *domain.TelegramLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	copied := *link
	f.links[link.ChatID] = &copied
	return nil
}

// fakeUserDirectory resolves usernames from a fixed map.
type fakeUserDirectory struct {
	users map[string]uuid.UUID
}

func (f *fakeUserDirectory) GetIDByUsername(ctx context.Context, username string) (uuid.UUID, error) {
	id, ok := f.users[username]
	if !ok {
		return uuid.Nil, store.ErrUserNotFound
	}
	return id, nil
}
