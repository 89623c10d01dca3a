package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// PostgresLinkStore implements store.LinkStore and store.UserDirectory using
// PostgreSQL. Link rows are keyed by external chat ID.
type PostgresLinkStore struct {
	db store.DBTX
}

// NewPostgresLinkStore creates a new PostgresLinkStore.
func NewPostgresLinkStore(db store.DBTX) *PostgresLinkStore {
	return &PostgresLinkStore{
		db: db,
	}
}

// Ensure PostgresLinkStore implements the store interfaces
var (
	_ store.LinkStore     = (*PostgresLinkStore)(nil)
	_ store.UserDirectory = (*PostgresLinkStore)(nil)
)

// ResolveChatID implements store.LinkStore.ResolveChatID
func (s *PostgresLinkStore) ResolveChatID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
		SELECT chat_id
		FROM telegram_links
		WHERE user_id = $1 AND state = 'linked'
	`

	var chatID int64
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&chatID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, store.ErrLinkNotFound
		}
		return 0, MapError(err)
	}

	return chatID, nil
}

// GetByChatID implements store.LinkStore.GetByChatID
func (s *PostgresLinkStore) GetByChatID(
	ctx context.Context,
	chatID int64,
) (*domain.TelegramLink, error) {
	query := `
		SELECT chat_id, user_id, username, state, created_at, updated_at
		FROM telegram_links
		WHERE chat_id = $1
	`

	var (
		link     domain.TelegramLink
		userID   uuid.NullUUID
		username sql.NullString
		state    string
	)

	err := s.db.QueryRowContext(ctx, query, chatID).Scan(
		&link.ChatID,
		&userID,
		&username,
		&state,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrLinkNotFound
		}
		return nil, MapError(err)
	}

	if userID.Valid {
		link.UserID = userID.UUID
	}
	link.Username = username.String
	link.State = domain.LinkState(state)

	return &link, nil
}

// Save implements store.LinkStore.Save
func (s *PostgresLinkStore) Save(ctx context.Context, link *domain.TelegramLink) error {
	query := `
		INSERT INTO telegram_links (chat_id, user_id, username, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (chat_id) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    username = EXCLUDED.username,
		    state = EXCLUDED.state,
		    updated_at = EXCLUDED.updated_at
	`

	// uuid.Nil means "no bound user" and is stored as NULL so the partial
	// unique index on user_id holds.
	var userID any
	if link.UserID != uuid.Nil {
		userID = link.UserID
	}

	_, err := s.db.ExecContext(ctx, query,
		link.ChatID,
		userID,
		link.Username,
		string(link.State),
		link.CreatedAt,
		link.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// GetIDByUsername implements store.UserDirectory.GetIDByUsername
func (s *PostgresLinkStore) GetIDByUsername(
	ctx context.Context,
	username string,
) (uuid.UUID, error) {
	query := `
		SELECT id
		FROM users
		WHERE username = $1
	`

	var id uuid.UUID
	if err := s.db.QueryRowContext(ctx, query, username).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, store.ErrUserNotFound
		}
		return uuid.Nil, MapError(err)
	}

	return id, nil
}
