package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// LinkStore persists the association between external chats and user
// accounts, including the in-progress state of each chat's link flow.
type LinkStore interface {
	// ResolveChatID returns the external chat handle for the user, if the
	// user has completed the link flow. Returns ErrLinkNotFound when the
	// user has no linked chat; callers treat that as "no external delivery
	// for this user", not as a failure.
	ResolveChatID(ctx context.Context, userID uuid.UUID) (int64, error)

	// GetByChatID retrieves the link record for an external chat.
	// Returns ErrLinkNotFound if the chat has never been seen.
	GetByChatID(ctx context.Context, chatID int64) (*domain.TelegramLink, error)

	// Save upserts the link record keyed by chat ID.
	Save(ctx context.Context, link *domain.TelegramLink) error
}

// UserDirectory resolves usernames to user identities. It is a thin view of
// the user tables owned by the auth/CRUD system, consumed only by the link
// flow.
type UserDirectory interface {
	// GetIDByUsername returns the user ID for the username.
	// Returns ErrUserNotFound if no such user exists.
	GetIDByUsername(ctx context.Context, username string) (uuid.UUID, error)
}
