package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rosterly/roster-api/internal/domain"
	"github.com/rosterly/roster-api/internal/platform/logger"
	"github.com/rosterly/roster-api/internal/store"
)

// PostgresTodoStore implements the store.TodoStore interface using a
// PostgreSQL database. Assignees live in the todo_assignees join table,
// so writes that touch the assignee set run inside a transaction.
type PostgresTodoStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTodoStore creates a new PostgreSQL implementation of the
// TodoStore interface. It requires a *sql.DB rather than a bare DBTX
// because assignee replacement needs transaction control.
func NewPostgresTodoStore(db *sql.DB, logger *slog.Logger) *PostgresTodoStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTodoStore{
		db:     db,
		logger: logger.With(slog.String("component", "todo_store")),
	}
}

// Ensure PostgresTodoStore implements store.TodoStore interface
var _ store.TodoStore = (*PostgresTodoStore)(nil)

// Create implements store.TodoStore.Create.
func (s *PostgresTodoStore) Create(ctx context.Context, todo *domain.Todo) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := todo.Validate(); err != nil {
		log.Warn("todo validation failed during create",
			slog.String("error", err.Error()),
			slog.String("todo_id", todo.ID.String()))
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO todos (id, owner_id, title, description, done, position, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err := tx.ExecContext(
			ctx,
			query,
			todo.ID,
			todo.OwnerID,
			todo.Title,
			todo.Description,
			todo.Done,
			todo.Position,
			todo.CreatedAt,
			todo.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to insert todo",
				slog.String("error", err.Error()),
				slog.String("todo_id", todo.ID.String()))
			return MapError(err)
		}

		if err := insertAssignees(ctx, tx, todo.ID, todo.AssigneeIDs); err != nil {
			return err
		}

		log.Info("todo created successfully", slog.String("todo_id", todo.ID.String()))
		return nil
	})
}

// GetByID implements store.TodoStore.GetByID.
func (s *PostgresTodoStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Todo, error) {
	query := selectTodoQuery + ` WHERE t.id = $1` + selectTodoSuffix
	todos, err := s.queryTodos(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(todos) == 0 {
		return nil, store.ErrTodoNotFound
	}
	return todos[0], nil
}

// ListForUser implements store.TodoStore.ListForUser. A todo is listed
// when the user owns it or appears in its assignee set.
func (s *PostgresTodoStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Todo, error) {
	query := selectTodoQuery + `
		WHERE t.owner_id = $1
		   OR EXISTS (
			SELECT 1 FROM todo_assignees x
			WHERE x.todo_id = t.id AND x.user_id = $1
		   )` + selectTodoSuffix
	return s.queryTodos(ctx, query, userID)
}

// Update implements store.TodoStore.Update. The stored assignee set is
// replaced wholesale with todo.AssigneeIDs.
func (s *PostgresTodoStore) Update(ctx context.Context, todo *domain.Todo) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := todo.Validate(); err != nil {
		log.Warn("todo validation failed during update",
			slog.String("error", err.Error()),
			slog.String("todo_id", todo.ID.String()))
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE todos
			SET title = $2, description = $3, done = $4, position = $5, updated_at = $6
			WHERE id = $1
		`
		result, err := tx.ExecContext(
			ctx,
			query,
			todo.ID,
			todo.Title,
			todo.Description,
			todo.Done,
			todo.Position,
			todo.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to update todo",
				slog.String("error", err.Error()),
				slog.String("todo_id", todo.ID.String()))
			return MapError(err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return store.ErrTodoNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM todo_assignees WHERE todo_id = $1`, todo.ID); err != nil {
			return MapError(err)
		}
		if err := insertAssignees(ctx, tx, todo.ID, todo.AssigneeIDs); err != nil {
			return err
		}

		log.Debug("todo updated successfully", slog.String("todo_id", todo.ID.String()))
		return nil
	})
}

// Delete implements store.TodoStore.Delete. Assignee rows go with the
// todo via ON DELETE CASCADE.
func (s *PostgresTodoStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete todo",
			slog.String("error", err.Error()),
			slog.String("todo_id", id.String()))
		return MapError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrTodoNotFound
	}

	log.Info("todo deleted successfully", slog.String("todo_id", id.String()))
	return nil
}

const selectTodoQuery = `
	SELECT t.id, t.owner_id, t.title, t.description, t.done, t.position,
	       t.created_at, t.updated_at, a.user_id
	FROM todos t
	LEFT JOIN todo_assignees a ON a.todo_id = t.id
`

const selectTodoSuffix = `
	ORDER BY t.position ASC, t.id, a.user_id
`

// queryTodos runs a todo+assignee join and folds the rows back into
// one Todo per id. Rows arrive grouped by todo because every query
// orders by t.id after position.
func (s *PostgresTodoStore) queryTodos(ctx context.Context, query string, args ...interface{}) ([]*domain.Todo, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query todos", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	todos := []*domain.Todo{}
	var current *domain.Todo
	for rows.Next() {
		var t domain.Todo
		var assigneeID uuid.NullUUID
		if err := rows.Scan(
			&t.ID,
			&t.OwnerID,
			&t.Title,
			&t.Description,
			&t.Done,
			&t.Position,
			&t.CreatedAt,
			&t.UpdatedAt,
			&assigneeID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan todo row: %w", err)
		}

		if current == nil || current.ID != t.ID {
			t.AssigneeIDs = []uuid.UUID{}
			todos = append(todos, &t)
			current = todos[len(todos)-1]
		}
		if assigneeID.Valid {
			current.AssigneeIDs = append(current.AssigneeIDs, assigneeID.UUID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todo rows: %w", err)
	}

	return todos, nil
}

// insertAssignees writes one join row per assignee inside the caller's
// transaction. A foreign key violation maps to store.ErrInvalidEntity.
func insertAssignees(ctx context.Context, tx *sql.Tx, todoID uuid.UUID, assignees []uuid.UUID) error {
	if len(assignees) == 0 {
		return nil
	}
	query := `INSERT INTO todo_assignees (todo_id, user_id) VALUES ($1, $2)`
	for _, userID := range assignees {
		if _, err := tx.ExecContext(ctx, query, todoID, userID); err != nil {
			return MapError(err)
		}
	}
	return nil
}

// inTx runs fn inside a transaction, committing on success and rolling
// back on error.
func (s *PostgresTodoStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
