package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rosterly/roster-api/internal/api/shared"
	"github.com/rosterly/roster-api/internal/domain"
	"github.com/rosterly/roster-api/internal/platform/logger"
	"github.com/rosterly/roster-api/internal/store"
	"github.com/rosterly/roster-api/internal/watch"
)

// TodoHandler handles todo CRUD and reorder API requests. After each
// successful mutation it publishes the change to the watch publisher so
// connected stream sessions hear about it without a database round-trip.
type TodoHandler struct {
	todoStore store.TodoStore
	notifier  watch.Publisher
	validator *validator.Validate
	logger    *slog.Logger
}

// NewTodoHandler creates a new TodoHandler with the given dependencies.
// The notifier may be nil, in which case changes propagate only through
// the database change listener.
func NewTodoHandler(
	todoStore store.TodoStore,
	notifier watch.Publisher,
	log *slog.Logger,
) *TodoHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TodoHandler{
		todoStore: todoStore,
		notifier:  notifier,
		validator: validator.New(),
		logger:    log.With("component", "todo_handler"),
	}
}

// ListTodos handles GET /todos: every todo the caller owns or is
// assigned to, ordered by position.
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	todos, err := h.todoStore.ListForUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list todos")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, todos)
}

// CreateTodo handles POST /todos.
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateTodoRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	// New todos go to the bottom of the caller's list.
	position, err := h.nextPosition(r, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create todo")
		return
	}

	todo, err := domain.NewTodo(userID, req.Title, req.Description, position)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if req.AssigneeIDs != nil {
		todo.AssigneeIDs = req.AssigneeIDs
		if err := todo.Validate(); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	if err := h.todoStore.Create(r.Context(), todo); err != nil {
		HandleAPIError(w, r, err, "Failed to create todo")
		return
	}

	h.publish(r, "INSERT", todo, nil)
	shared.RespondWithJSON(w, r, http.StatusCreated, todo)
}

// UpdateTodo handles PUT /todos/{id}. The owner and assignees may update;
// anyone else gets a not-found to avoid leaking existence.
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	userID, todoID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTodoRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	todo, err := h.loadVisible(w, r, todoID, userID)
	if err != nil {
		return
	}

	previousAssignees := todo.AssigneeIDs

	if req.Title != nil {
		todo.Title = *req.Title
	}
	if req.Description != nil {
		todo.Description = *req.Description
	}
	if req.Done != nil {
		todo.Done = *req.Done
	}
	if req.AssigneeIDs != nil {
		// Only the owner may change who a todo is assigned to.
		if todo.OwnerID != userID {
			HandleAPIError(w, r, ErrForbidden, "")
			return
		}
		todo.AssigneeIDs = *req.AssigneeIDs
	}
	todo.UpdatedAt = time.Now().UTC()

	if err := todo.Validate(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.todoStore.Update(r.Context(), todo); err != nil {
		HandleAPIError(w, r, err, "Failed to update todo")
		return
	}

	h.publish(r, "UPDATE", todo, previousAssignees)
	shared.RespondWithJSON(w, r, http.StatusOK, todo)
}

// DeleteTodo handles DELETE /todos/{id}. Only the owner may delete.
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	userID, todoID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	todo, err := h.loadVisible(w, r, todoID, userID)
	if err != nil {
		return
	}

	if todo.OwnerID != userID {
		HandleAPIError(w, r, ErrForbidden, "")
		return
	}

	if err := h.todoStore.Delete(r.Context(), todoID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete todo")
		return
	}

	h.publish(r, "DELETE", todo, nil)
	w.WriteHeader(http.StatusNoContent)
}

// MoveTodo handles POST /todos/{id}/move: reorders the todo between two
// neighbours using fractional positions, so a drag touches one row.
func (h *TodoHandler) MoveTodo(w http.ResponseWriter, r *http.Request) {
	userID, todoID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req MoveTodoRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if req.AfterID == nil && req.BeforeID == nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Move requires at least one neighbour")
		return
	}

	todo, err := h.loadVisible(w, r, todoID, userID)
	if err != nil {
		return
	}

	position, err := h.positionBetween(r, userID, req.AfterID, req.BeforeID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to move todo")
		return
	}

	todo.Position = position
	todo.UpdatedAt = time.Now().UTC()

	if err := h.todoStore.Update(r.Context(), todo); err != nil {
		HandleAPIError(w, r, err, "Failed to move todo")
		return
	}

	h.publish(r, "UPDATE", todo, nil)
	shared.RespondWithJSON(w, r, http.StatusOK, todo)
}

// loadVisible fetches the todo and enforces visibility: users who are
// neither owner nor assignee receive the same not-found as a missing
// todo. On failure an error response has already been written and a
// non-nil error is returned.
func (h *TodoHandler) loadVisible(
	w http.ResponseWriter,
	r *http.Request,
	todoID, userID uuid.UUID,
) (*domain.Todo, error) {
	todo, err := h.todoStore.GetByID(r.Context(), todoID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load todo")
		return nil, err
	}
	if !todo.IsVisibleTo(userID) {
		HandleAPIError(w, r, store.ErrTodoNotFound, "")
		return nil, store.ErrTodoNotFound
	}
	return todo, nil
}

// nextPosition returns a position greater than every todo currently on
// the user's list.
func (h *TodoHandler) nextPosition(r *http.Request, userID uuid.UUID) (float64, error) {
	todos, err := h.todoStore.ListForUser(r.Context(), userID)
	if err != nil {
		return 0, err
	}
	if len(todos) == 0 {
		return 1, nil
	}
	return todos[len(todos)-1].Position + 1, nil
}

// positionBetween resolves the neighbour IDs against the caller's list
// and returns the fractional position between them.
func (h *TodoHandler) positionBetween(
	r *http.Request,
	userID uuid.UUID,
	afterID, beforeID *uuid.UUID,
) (float64, error) {
	var after, before *domain.Todo
	var err error

	if afterID != nil {
		if after, err = h.todoStore.GetByID(r.Context(), *afterID); err != nil {
			return 0, err
		}
		if !after.IsVisibleTo(userID) {
			return 0, store.ErrTodoNotFound
		}
	}
	if beforeID != nil {
		if before, err = h.todoStore.GetByID(r.Context(), *beforeID); err != nil {
			return 0, err
		}
		if !before.IsVisibleTo(userID) {
			return 0, store.ErrTodoNotFound
		}
	}

	switch {
	case after != nil && before != nil:
		return (after.Position + before.Position) / 2, nil
	case after != nil:
		return after.Position + 1, nil
	default:
		return before.Position - 1, nil
	}
}

// publish notifies stream sessions about a successful mutation. For
// assignment changes the union of the old and new assignee sets is
// published so removed assignees also learn their list changed.
func (h *TodoHandler) publish(r *http.Request, op string, todo *domain.Todo, previousAssignees []uuid.UUID) {
	if h.notifier == nil {
		return
	}

	assignees := make([]uuid.UUID, len(todo.AssigneeIDs))
	copy(assignees, todo.AssigneeIDs)
	if len(previousAssignees) > 0 {
		seen := make(map[uuid.UUID]struct{}, len(assignees))
		for _, id := range assignees {
			seen[id] = struct{}{}
		}
		for _, id := range previousAssignees {
			if _, dup := seen[id]; !dup {
				assignees = append(assignees, id)
			}
		}
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Debug("publishing todo change", "op", op, "todo_id", todo.ID)

	h.notifier.Publish(watch.Change{
		Op:          op,
		TodoID:      todo.ID,
		OwnerID:     todo.OwnerID,
		AssigneeIDs: assignees,
	})
}
