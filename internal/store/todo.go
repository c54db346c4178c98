package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/rosterly/roster-api/internal/domain"
)

// TodoStore defines the interface for todo data persistence.
type TodoStore interface {
	// Create saves a new todo and its assignee set to the store.
	// Returns ErrInvalidEntity if the owner or any assignee does not exist.
	// Returns validation errors from the domain Todo if data is invalid.
	Create(ctx context.Context, todo *domain.Todo) error

	// GetByID retrieves a todo by its unique ID, assignees included.
	// Returns ErrTodoNotFound if the todo does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Todo, error)

	// ListForUser retrieves every todo the given user owns or is assigned
	// to, ordered by position ascending. Returns an empty slice when the
	// user has no todos.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Todo, error)

	// Update replaces a todo's mutable fields and its full assignee set
	// in a single transaction. Returns ErrTodoNotFound if the todo does
	// not exist and ErrInvalidEntity if an assignee does not exist.
	Update(ctx context.Context, todo *domain.Todo) error

	// Delete removes a todo and its assignee rows.
	// Returns ErrTodoNotFound if the todo does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
