package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rosterly/roster-api/internal/api/shared"
	"github.com/rosterly/roster-api/internal/domain"
	"github.com/rosterly/roster-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTodoRouter mounts the handler behind a router that authenticates
// every request as userID.
func newTodoRouter(h *TodoHandler, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/todos", h.ListTodos)
	r.Post("/todos", h.CreateTodo)
	r.Put("/todos/{id}", h.UpdateTodo)
	r.Delete("/todos/{id}", h.DeleteTodo)
	r.Post("/todos/{id}/move", h.MoveTodo)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	return rec
}

func seedTodo(t *testing.T, s *mocks.MockTodoStore, owner uuid.UUID, position float64, assignees ...uuid.UUID) *domain.Todo {
	t.Helper()
	todo, err := domain.NewTodo(owner, fmt.Sprintf("todo at %v", position), "", position)
	require.NoError(t, err)
	todo.AssigneeIDs = assignees
	require.NoError(t, s.Create(context.Background(), todo))
	return todo
}

func TestTodoHandler_CreateTodo(t *testing.T) {
	t.Parallel()

	t.Run("creates at bottom of list", func(t *testing.T) {
		t.Parallel()

		owner := uuid.New()
		todoStore := mocks.NewMockTodoStore()
		publisher := &mocks.MockPublisher{}
		h := NewTodoHandler(todoStore, publisher, nil)
		seedTodo(t, todoStore, owner, 3)

		rec := doJSON(t, newTodoRouter(h, owner), http.MethodPost, "/todos",
			CreateTodoRequest{Title: "buy milk", Description: "2%"})

		require.Equal(t, http.StatusCreated, rec.Code)

		var created domain.Todo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "buy milk", created.Title)
		assert.Equal(t, owner, created.OwnerID)
		assert.Equal(t, float64(4), created.Position, "new todos append after the last position")
		assert.False(t, created.Done)

		published := publisher.Published()
		require.Len(t, published, 1)
		assert.Equal(t, "INSERT", published[0].Op)
		assert.Equal(t, created.ID, published[0].TodoID)
		assert.Equal(t, owner, published[0].OwnerID)
	})

	t.Run("first todo gets position one", func(t *testing.T) {
		t.Parallel()

		owner := uuid.New()
		h := NewTodoHandler(mocks.NewMockTodoStore(), nil, nil)

		rec := doJSON(t, newTodoRouter(h, owner), http.MethodPost, "/todos",
			CreateTodoRequest{Title: "first"})

		require.Equal(t, http.StatusCreated, rec.Code)
		var created domain.Todo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, float64(1), created.Position)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		t.Parallel()

		h := NewTodoHandler(mocks.NewMockTodoStore(), nil, nil)
		rec := doJSON(t, newTodoRouter(h, uuid.New()), http.MethodPost, "/todos",
			CreateTodoRequest{Title: ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects self-assignment", func(t *testing.T) {
		t.Parallel()

		owner := uuid.New()
		h := NewTodoHandler(mocks.NewMockTodoStore(), nil, nil)
		rec := doJSON(t, newTodoRouter(h, owner), http.MethodPost, "/todos",
			CreateTodoRequest{Title: "x", AssigneeIDs: []uuid.UUID{owner}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("nil publisher is tolerated", func(t *testing.T) {
		t.Parallel()

		h := NewTodoHandler(mocks.NewMockTodoStore(), nil, nil)
		rec := doJSON(t, newTodoRouter(h, uuid.New()), http.MethodPost, "/todos",
			CreateTodoRequest{Title: "quiet"})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestTodoHandler_ListTodos(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	other := uuid.New()
	todoStore := mocks.NewMockTodoStore()
	h := NewTodoHandler(todoStore, nil, nil)

	seedTodo(t, todoStore, owner, 2)
	seedTodo(t, todoStore, owner, 1)
	seedTodo(t, todoStore, other, 3, owner) // assigned to caller
	seedTodo(t, todoStore, other, 4)        // invisible to caller

	rec := doJSON(t, newTodoRouter(h, owner), http.MethodGet, "/todos", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var todos []domain.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todos))
	require.Len(t, todos, 3, "owned and assigned todos, never anyone else's")

	positions := []float64{todos[0].Position, todos[1].Position, todos[2].Position}
	assert.Equal(t, []float64{1, 2, 3}, positions, "ordered by position ascending")
}

func TestTodoHandler_UpdateTodo(t *testing.T) {
	t.Parallel()

	t.Run("owner updates fields", func(t *testing.T) {
		t.Parallel()

		owner := uuid.New()
		todoStore := mocks.NewMockTodoStore()
		publisher := &mocks.MockPublisher{}
		h := NewTodoHandler(todoStore, publisher, nil)
		todo := seedTodo(t, todoStore, owner, 1)

		title := "renamed"
		done := true
		rec := doJSON(t, newTodoRouter(h, owner), http.MethodPut, "/todos/"+todo.ID.String(),
			UpdateTodoRequest{Title: &title, Done: &done})

		require.Equal(t, http.StatusOK, rec.Code)
		var updated domain.Todo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "renamed", updated.Title)
		assert.True(t, updated.Done)

		published := publisher.Published()
		require.Len(t, published, 1)
		assert.Equal(t, "UPDATE", published[0].Op)
	})

	t.Run("assignee may update status but not assignees", func(t *testing.T) {
		t.Parallel()

		owner := uuid.New()
		assignee := uuid.New()
		todoStore := mocks.NewMockTodoStore()
		h := NewTodoHandler(todoStore, nil, nil)
		todo := seedTodo(t, todoStore, owner, 1, assignee)

		done := true
		rec := doJSON(t, newTodoRouter(h, assignee), http.MethodPut, "/todos/"+todo.ID.String(),
			UpdateTodoRequest{Done: &done})
		assert.Equal(t, http.StatusOK, rec.Code)

		newSet := []uuid.UUID{uuid.New()}
		rec = doJSON(t, newTodoRouter(h, assignee), http.MethodPut, "/todos/"+todo.ID.String(),
			UpdateTodoRequest{AssigneeIDs: &newSet})
		assert.Equal(t, http.StatusForbidden, rec.Code,
			"only the owner may change the assignee set")
	})

	t.Run("invisible todo is indistinguishable from missing", func(t *testing.T) {
		t.Parallel()

		owner := uuid.New()
		stranger := uuid.New()
		todoStore := mocks.NewMockTodoStore()
		h := NewTodoHandler(todoStore, nil, nil)
		todo := seedTodo(t, todoStore, owner, 1)

		title := "sneaky"
		rec := doJSON(t, newTodoRouter(h, stranger), http.MethodPut, "/todos/"+todo.ID.String(),
			UpdateTodoRequest{Title: &title})
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = doJSON(t, newTodoRouter(h, stranger), http.MethodPut, "/todos/"+uuid.New().String(),
			UpdateTodoRequest{Title: &title})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("removed assignee hears about the change", func(t *testing.T) {
		t.Parallel()

		owner := uuid.New()
		removed := uuid.New()
		todoStore := mocks.NewMockTodoStore()
		publisher := &mocks.MockPublisher{}
		h := NewTodoHandler(todoStore, publisher, nil)
		todo := seedTodo(t, todoStore, owner, 1, removed)

		empty := []uuid.UUID{}
		rec := doJSON(t, newTodoRouter(h, owner), http.MethodPut, "/todos/"+todo.ID.String(),
			UpdateTodoRequest{AssigneeIDs: &empty})
		require.Equal(t, http.StatusOK, rec.Code)

		published := publisher.Published()
		require.Len(t, published, 1)
		assert.Contains(t, published[0].AssigneeIDs, removed,
			"the published change must cover users removed from the set")
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()

		h := NewTodoHandler(mocks.NewMockTodoStore(), nil, nil)
		title := "x"
		rec := doJSON(t, newTodoRouter(h, uuid.New()), http.MethodPut, "/todos/not-a-uuid",
			UpdateTodoRequest{Title: &title})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTodoHandler_DeleteTodo(t *testing.T) {
	t.Parallel()

	t.Run("owner deletes", func(t *testing.T) {
		t.Parallel()

		owner := uuid.New()
		todoStore := mocks.NewMockTodoStore()
		publisher := &mocks.MockPublisher{}
		h := NewTodoHandler(todoStore, publisher, nil)
		todo := seedTodo(t, todoStore, owner, 1)

		rec := doJSON(t, newTodoRouter(h, owner), http.MethodDelete, "/todos/"+todo.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		published := publisher.Published()
		require.Len(t, published, 1)
		assert.Equal(t, "DELETE", published[0].Op)

		_, err := todoStore.GetByID(context.Background(), todo.ID)
		assert.Error(t, err)
	})

	t.Run("assignee may not delete", func(t *testing.T) {
		t.Parallel()

		owner := uuid.New()
		assignee := uuid.New()
		todoStore := mocks.NewMockTodoStore()
		h := NewTodoHandler(todoStore, nil, nil)
		todo := seedTodo(t, todoStore, owner, 1, assignee)

		rec := doJSON(t, newTodoRouter(h, assignee), http.MethodDelete, "/todos/"+todo.ID.String(), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code,
			"a visible todo the caller does not own is forbidden, not hidden")
	})

	t.Run("stranger gets not found", func(t *testing.T) {
		t.Parallel()

		owner := uuid.New()
		todoStore := mocks.NewMockTodoStore()
		h := NewTodoHandler(todoStore, nil, nil)
		todo := seedTodo(t, todoStore, owner, 1)

		rec := doJSON(t, newTodoRouter(h, uuid.New()), http.MethodDelete, "/todos/"+todo.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTodoHandler_MoveTodo(t *testing.T) {
	t.Parallel()

	t.Run("between two neighbours takes the midpoint", func(t *testing.T) {
		t.Parallel()

		owner := uuid.New()
		todoStore := mocks.NewMockTodoStore()
		h := NewTodoHandler(todoStore, nil, nil)

		first := seedTodo(t, todoStore, owner, 1)
		second := seedTodo(t, todoStore, owner, 2)
		moved := seedTodo(t, todoStore, owner, 3)

		rec := doJSON(t, newTodoRouter(h, owner), http.MethodPost,
			"/todos/"+moved.ID.String()+"/move",
			MoveTodoRequest{AfterID: &first.ID, BeforeID: &second.ID})

		require.Equal(t, http.StatusOK, rec.Code)
		var result domain.Todo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 1.5, result.Position)
	})

	t.Run("after only moves below the neighbour", func(t *testing.T) {
		t.Parallel()

		owner := uuid.New()
		todoStore := mocks.NewMockTodoStore()
		h := NewTodoHandler(todoStore, nil, nil)

		anchor := seedTodo(t, todoStore, owner, 5)
		moved := seedTodo(t, todoStore, owner, 1)

		rec := doJSON(t, newTodoRouter(h, owner), http.MethodPost,
			"/todos/"+moved.ID.String()+"/move",
			MoveTodoRequest{AfterID: &anchor.ID})

		require.Equal(t, http.StatusOK, rec.Code)
		var result domain.Todo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, float64(6), result.Position)
	})

	t.Run("before only moves above the neighbour", func(t *testing.T) {
		t.Parallel()

		owner := uuid.New()
		todoStore := mocks.NewMockTodoStore()
		h := NewTodoHandler(todoStore, nil, nil)

		anchor := seedTodo(t, todoStore, owner, 5)
		moved := seedTodo(t, todoStore, owner, 9)

		rec := doJSON(t, newTodoRouter(h, owner), http.MethodPost,
			"/todos/"+moved.ID.String()+"/move",
			MoveTodoRequest{BeforeID: &anchor.ID})

		require.Equal(t, http.StatusOK, rec.Code)
		var result domain.Todo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, float64(4), result.Position)
	})

	t.Run("requires at least one neighbour", func(t *testing.T) {
		t.Parallel()

		owner := uuid.New()
		todoStore := mocks.NewMockTodoStore()
		h := NewTodoHandler(todoStore, nil, nil)
		moved := seedTodo(t, todoStore, owner, 1)

		rec := doJSON(t, newTodoRouter(h, owner), http.MethodPost,
			"/todos/"+moved.ID.String()+"/move", MoveTodoRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("neighbour must be visible", func(t *testing.T) {
		t.Parallel()

		owner := uuid.New()
		stranger := uuid.New()
		todoStore := mocks.NewMockTodoStore()
		h := NewTodoHandler(todoStore, nil, nil)

		moved := seedTodo(t, todoStore, owner, 1)
		foreign := seedTodo(t, todoStore, stranger, 2)

		rec := doJSON(t, newTodoRouter(h, owner), http.MethodPost,
			"/todos/"+moved.ID.String()+"/move",
			MoveTodoRequest{AfterID: &foreign.ID})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
