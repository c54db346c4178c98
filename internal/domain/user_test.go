package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("valid user", func(t *testing.T) {
		t.Parallel()

		user, err := NewUser("user@example.com", "a-long-enough-password")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "user@example.com", user.Email)
		assert.False(t, user.CreatedAt.IsZero())
	})

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "empty email",
			email:    "",
			password: "a-long-enough-password",
			wantErr:  ErrEmptyEmail,
		},
		{
			name:     "invalid email",
			email:    "not-an-email",
			password: "a-long-enough-password",
			wantErr:  ErrInvalidEmail,
		},
		{
			name:     "password too short",
			email:    "user@example.com",
			password: "short",
			wantErr:  ErrPasswordTooShort,
		},
		{
			name:     "password too long for bcrypt",
			email:    "user@example.com",
			password: strings.Repeat("x", 73),
			wantErr:  ErrPasswordTooLong,
		},
		{
			name:     "empty password",
			email:    "user@example.com",
			password: "",
			wantErr:  ErrEmptyPassword,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewUser(tc.email, tc.password)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestUser_ValidateStoredUser(t *testing.T) {
	t.Parallel()

	// A user loaded from the store carries only the hash.
	user := &User{
		ID:             uuid.New(),
		Email:          "user@example.com",
		HashedPassword: "$2a$10$somethinghashed",
	}
	assert.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), ErrEmptyPassword)
}
