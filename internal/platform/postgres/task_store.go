package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// PostgresTaskReader implements the store.TaskReader interface over the task
// tables owned by the CRUD system. All queries are read-only.
type PostgresTaskReader struct {
	db store.DBTX
}

// NewPostgresTaskReader creates a new PostgresTaskReader.
func NewPostgresTaskReader(db store.DBTX) *PostgresTaskReader {
	return &PostgresTaskReader{
		db: db,
	}
}

// Ensure PostgresTaskReader implements store.TaskReader
var _ store.TaskReader = (*PostgresTaskReader)(nil)

// ListOpenOverdue implements store.TaskReader.ListOpenOverdue
func (s *PostgresTaskReader) ListOpenOverdue(
	ctx context.Context,
	now time.Time,
) ([]*domain.TaskSnapshot, error) {
	query := `
		SELECT id, title, description, assigned_to, created_by, status, priority, due_date
		FROM tasks
		WHERE due_date < $1 AND status IN ('pending', 'in_progress')
		ORDER BY due_date ASC
	`

	return s.queryTasks(ctx, query, now)
}

// ListByAssignee implements store.TaskReader.ListByAssignee
func (s *PostgresTaskReader) ListByAssignee(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.TaskSnapshot, error) {
	query := `
		SELECT id, title, description, assigned_to, created_by, status, priority, due_date
		FROM tasks
		WHERE assigned_to = $1
		ORDER BY created_at DESC
	`

	return s.queryTasks(ctx, query, userID)
}

func (s *PostgresTaskReader) queryTasks(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.TaskSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.TaskSnapshot
	for rows.Next() {
		var (
			t           domain.TaskSnapshot
			description sql.NullString
			priority    sql.NullString
			status      string
			dueDate     sql.NullTime
		)

		err := rows.Scan(
			&t.ID,
			&t.Title,
			&description,
			&t.AssignedTo,
			&t.CreatedBy,
			&status,
			&priority,
			&dueDate,
		)
		if err != nil {
			return nil, MapError(err)
		}

		t.Description = description.String
		t.Status = domain.TaskStatus(status)
		t.Priority = domain.TaskPriority(priority.String)
		if dueDate.Valid {
			d := dueDate.Time
			t.DueDate = &d
		}

		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}
