package mocks

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rosterly/roster-api/internal/domain"
	"github.com/rosterly/roster-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn              func(ctx context.Context, user *domain.User) error
	GetByIDFn             func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn          func(ctx context.Context, email string) (*domain.User, error)
	SearchByEmailPrefixFn func(ctx context.Context, prefix string, excludeID uuid.UUID, limit int) ([]*domain.User, error)

	// Data for default implementation, keyed by email
	Users       map[string]*domain.User
	CreateError error
	GetError    error
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users: make(map[string]*domain.User),
	}
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, exists := m.Users[user.Email]; exists {
		return store.ErrEmailExists
	}
	m.Users[user.Email] = user
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, user := range m.Users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	if user, exists := m.Users[email]; exists {
		return user, nil
	}
	return nil, store.ErrUserNotFound
}

// SearchByEmailPrefix implements the UserStore interface
func (m *MockUserStore) SearchByEmailPrefix(
	ctx context.Context,
	prefix string,
	excludeID uuid.UUID,
	limit int,
) ([]*domain.User, error) {
	if m.SearchByEmailPrefixFn != nil {
		return m.SearchByEmailPrefixFn(ctx, prefix, excludeID, limit)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}

	matched := []*domain.User{}
	for email, user := range m.Users {
		if strings.HasPrefix(email, prefix) && user.ID != excludeID {
			matched = append(matched, user)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Email < matched[j].Email })
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
