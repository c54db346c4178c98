package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common todo validation errors
var (
	ErrEmptyTodoID     = errors.New("todo ID cannot be empty")
	ErrEmptyOwnerID    = errors.New("todo owner ID cannot be empty")
	ErrEmptyTitle      = errors.New("todo title cannot be empty")
	ErrTitleTooLong    = errors.New("todo title must be at most 500 characters")
	ErrSelfAssignment  = errors.New("todo owner is implicitly assigned and cannot appear in the assignee list")
	ErrDuplicateAssign = errors.New("todo assignee list contains duplicates")
)

// Todo represents a single task on a shared list. A todo is owned by the
// user who created it and may additionally be assigned to other users.
// Position is a fractional sort key: reordering a todo between two
// neighbours assigns it the midpoint of their positions, so a move touches
// exactly one row.
type Todo struct {
	ID          uuid.UUID   `json:"id"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Done        bool        `json:"done"`
	AssigneeIDs []uuid.UUID `json:"assignee_ids"`
	Position    float64     `json:"position"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewTodo creates a new Todo owned by the given user.
// It generates a new UUID for the todo and sets the timestamps.
// Returns an error if validation fails.
func NewTodo(ownerID uuid.UUID, title, description string, position float64) (*Todo, error) {
	now := time.Now().UTC()
	todo := &Todo{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		AssigneeIDs: []uuid.UUID{},
		Position:    position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := todo.Validate(); err != nil {
		return nil, err
	}

	return todo, nil
}

// Validate checks if the Todo has valid data.
// Returns an error if any field fails validation.
func (t *Todo) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTodoID
	}
	if t.OwnerID == uuid.Nil {
		return ErrEmptyOwnerID
	}
	if t.Title == "" {
		return ErrEmptyTitle
	}
	if len(t.Title) > 500 {
		return ErrTitleTooLong
	}

	seen := make(map[uuid.UUID]struct{}, len(t.AssigneeIDs))
	for _, id := range t.AssigneeIDs {
		if id == t.OwnerID {
			return ErrSelfAssignment
		}
		if _, dup := seen[id]; dup {
			return ErrDuplicateAssign
		}
		seen[id] = struct{}{}
	}

	return nil
}

// IsVisibleTo reports whether the given user may see this todo,
// i.e. the user owns it or is assigned to it.
func (t *Todo) IsVisibleTo(userID uuid.UUID) bool {
	if t.OwnerID == userID {
		return true
	}
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsAssignedTo reports whether the given user appears in the assignee list.
func (t *Todo) IsAssignedTo(userID uuid.UUID) bool {
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}
