package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"doorman/infrastructure"
	"doorman/pkg/jwt"
)

// JSONHandler serves the admin-only user listing endpoints. The responses use
// PublicUser, so password hashes and emails never leave the service.
type JSONHandler struct {
	users Repository
}

func NewJSONHandler(users Repository) *JSONHandler {
	return &JSONHandler{users: users}
}

func (h *JSONHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	users, err := h.users.List(r.Context())
	if err != nil {
		http.Error(w, "failed to list users", http.StatusInternalServerError)
		return
	}

	public := make([]*PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(public)
}

func (h *JSONHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	u, err := h.users.GetByID(r.Context(), id)
	if errors.Is(err, infrastructure.ErrUserNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to load user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u.Public())
}

func (h *JSONHandler) GetUserByName(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	u, err := h.users.GetByUsername(r.Context(), mux.Vars(r)["username"])
	if errors.Is(err, infrastructure.ErrUserNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to load user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u.Public())
}

func isAdmin(r *http.Request) bool {
	claims, ok := jwt.FromContext(r.Context())
	return ok && claims.IsAdmin
}
