package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// PostgresNotificationStore implements the store.NotificationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNotificationStore struct {
	db store.DBTX
}

// NewPostgresNotificationStore creates a new PostgreSQL implementation of the
// NotificationStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
func NewPostgresNotificationStore(db store.DBTX) *PostgresNotificationStore {
	return &PostgresNotificationStore{
		db: db,
	}
}

// Ensure PostgresNotificationStore implements store.NotificationStore
var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// Create implements store.NotificationStore.Create
func (s *PostgresNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	log := logger.FromContext(ctx)

	if err := n.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO notifications (id, user_id, kind, title, message, is_read, created_at, read_at, task_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		string(n.Kind),
		n.Title,
		n.Message,
		n.IsRead,
		n.CreatedAt,
		n.ReadAt,
		n.TaskID,
	)
	if err != nil {
		log.Error("failed to save notification",
			"notification_id", n.ID,
			"user_id", n.UserID,
			"kind", n.Kind,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.NotificationStore.GetByID
func (s *PostgresNotificationStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Notification, error) {
	query := `
		SELECT id, user_id, kind, title, message, is_read, created_at, read_at, task_id
		FROM notifications
		WHERE id = $1
	`

	row := s.db.QueryRowContext(ctx, query, id)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotificationNotFound
		}
		return nil, MapError(err)
	}

	return n, nil
}

// MarkRead implements store.NotificationStore.MarkRead
func (s *PostgresNotificationStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	// The is_read guard preserves the original read timestamp when the
	// notification was already read, keeping the operation idempotent.
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = $2
		WHERE id = $1 AND is_read = FALSE
	`

	result, err := s.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		// Either the notification does not exist or it was already read.
		// Distinguish the two so already-read stays a successful no-op.
		var exists bool
		checkQuery := `SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1)`
		if err := s.db.QueryRowContext(ctx, checkQuery, id).Scan(&exists); err != nil {
			return MapError(err)
		}
		if !exists {
			return store.ErrNotificationNotFound
		}
	}

	return nil
}

// MarkAllRead implements store.NotificationStore.MarkAllRead
func (s *PostgresNotificationStore) MarkAllRead(
	ctx context.Context,
	userID uuid.UUID,
) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = $2
		WHERE user_id = $1 AND is_read = FALSE
	`

	result, err := s.db.ExecContext(ctx, query, userID, time.Now().UTC())
	if err != nil {
		return 0, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

// ListUnread implements store.NotificationStore.ListUnread
func (s *PostgresNotificationStore) ListUnread(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, kind, title, message, is_read, created_at, read_at, task_id
		FROM notifications
		WHERE user_id = $1 AND is_read = FALSE
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var notifications []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, MapError(err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return notifications, nil
}

// CountUnread implements store.NotificationStore.CountUnread
func (s *PostgresNotificationStore) CountUnread(
	ctx context.Context,
	userID uuid.UUID,
) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND is_read = FALSE
	`

	var count int64
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var (
		n      domain.Notification
		kind   string
		readAt sql.NullTime
		taskID sql.NullInt64
	)

	err := row.Scan(
		&n.ID,
		&n.UserID,
		&kind,
		&n.Title,
		&n.Message,
		&n.IsRead,
		&n.CreatedAt,
		&readAt,
		&taskID,
	)
	if err != nil {
		return nil, err
	}

	n.Kind = domain.NotificationKind(kind)
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	if taskID.Valid {
		id := taskID.Int64
		n.TaskID = &id
	}

	return &n, nil
}
