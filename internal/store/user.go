package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/rosterly/roster-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// It handles domain validation and password hashing internally.
	// Returns ErrEmailExists if the email is already taken.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	// The returned user contains all fields except the plaintext password.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	// The returned user contains all fields except the plaintext password.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// SearchByEmailPrefix finds users whose email starts with the given
	// prefix, excluding the user identified by excludeID (the caller should
	// not appear in its own assignee picker). Results are capped at limit
	// and ordered by email.
	SearchByEmailPrefix(
		ctx context.Context,
		prefix string,
		excludeID uuid.UUID,
		limit int,
	) ([]*domain.User, error)
}
