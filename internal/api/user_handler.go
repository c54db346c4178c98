package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/rosterly/roster-api/internal/api/shared"
	"github.com/rosterly/roster-api/internal/store"
)

// maxUserSearchResults caps the assignee-picker result set.
const maxUserSearchResults = 10

// UserHandler handles user lookup API requests.
type UserHandler struct {
	userStore store.UserStore
	logger    *slog.Logger
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(userStore store.UserStore, log *slog.Logger) *UserHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UserHandler{
		userStore: userStore,
		logger:    log.With("component", "user_handler"),
	}
}

// SearchUsers handles GET /users/search?q=<prefix>: an email-prefix
// search feeding the assignee picker. The caller is excluded from the
// results.
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	users, err := h.userStore.SearchByEmailPrefix(r.Context(), query, userID, maxUserSearchResults)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search users")
		return
	}

	results := make([]UserSummary, 0, len(users))
	for _, u := range users {
		results = append(results, UserSummary{ID: u.ID, Email: u.Email})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, results)
}
