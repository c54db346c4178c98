package api

import (
	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CreateTodoRequest defines the payload for creating a todo.
type CreateTodoRequest struct {
	Title       string      `json:"title"       validate:"required,max=500"`
	Description string      `json:"description" validate:"max=4000"`
	AssigneeIDs []uuid.UUID `json:"assignee_ids"`
}

// UpdateTodoRequest defines the payload for updating a todo. Nil fields
// are left unchanged; a non-nil AssigneeIDs replaces the whole set.
type UpdateTodoRequest struct {
	Title       *string      `json:"title"        validate:"omitempty,max=500"`
	Description *string      `json:"description"  validate:"omitempty,max=4000"`
	Done        *bool        `json:"done"`
	AssigneeIDs *[]uuid.UUID `json:"assignee_ids"`
}

// MoveTodoRequest defines the payload for the reorder endpoint. The todo
// is placed between the two named neighbours; either may be omitted to
// move to the top or bottom of the list.
type MoveTodoRequest struct {
	AfterID  *uuid.UUID `json:"after_id"`
	BeforeID *uuid.UUID `json:"before_id"`
}

// UserSummary is the public projection of a user returned by search.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}
