package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rosterly/roster-api/internal/domain"
	"github.com/rosterly/roster-api/internal/store"
)

// MockTodoStore implements store.TodoStore for testing
type MockTodoStore struct {
	// Function fields for customizable behavior
	CreateFn      func(ctx context.Context, todo *domain.Todo) error
	GetByIDFn     func(ctx context.Context, id uuid.UUID) (*domain.Todo, error)
	ListForUserFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Todo, error)
	UpdateFn      func(ctx context.Context, todo *domain.Todo) error
	DeleteFn      func(ctx context.Context, id uuid.UUID) error

	// Data for default implementation
	mu    sync.Mutex
	Todos map[uuid.UUID]*domain.Todo
	Err   error
}

var _ store.TodoStore = (*MockTodoStore)(nil)

// NewMockTodoStore creates a new mock store with initialized defaults
func NewMockTodoStore() *MockTodoStore {
	return &MockTodoStore{
		Todos: make(map[uuid.UUID]*domain.Todo),
	}
}

// Create implements the TodoStore interface
func (m *MockTodoStore) Create(ctx context.Context, todo *domain.Todo) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, todo)
	}
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Todos[todo.ID] = todo
	return nil
}

// GetByID implements the TodoStore interface
func (m *MockTodoStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Todo, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if todo, ok := m.Todos[id]; ok {
		return todo, nil
	}
	return nil, store.ErrTodoNotFound
}

// ListForUser implements the TodoStore interface
func (m *MockTodoStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Todo, error) {
	if m.ListForUserFn != nil {
		return m.ListForUserFn(ctx, userID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	todos := []*domain.Todo{}
	for _, todo := range m.Todos {
		if todo.IsVisibleTo(userID) {
			todos = append(todos, todo)
		}
	}
	sort.Slice(todos, func(i, j int) bool { return todos[i].Position < todos[j].Position })
	return todos, nil
}

// Update implements the TodoStore interface
func (m *MockTodoStore) Update(ctx context.Context, todo *domain.Todo) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, todo)
	}
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Todos[todo.ID]; !ok {
		return store.ErrTodoNotFound
	}
	m.Todos[todo.ID] = todo
	return nil
}

// Delete implements the TodoStore interface
func (m *MockTodoStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Todos[id]; !ok {
		return store.ErrTodoNotFound
	}
	delete(m.Todos, id)
	return nil
}
