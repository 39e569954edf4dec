// Package users provides user management endpoints.
package users

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/obra-coop/obranet/internal/api/auth"
	"github.com/obra-coop/obranet/internal/api/middleware"
	"github.com/obra-coop/obranet/internal/api/respond"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

// Handler handles user management endpoints.
type Handler struct {
	users storage.UserRepository
}

// NewHandler creates a new user handler.
func NewHandler(users storage.UserRepository) *Handler {
	return &Handler{users: users}
}

// CreateRequest is the user creation payload.
type CreateRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// Create registers a new user. Admin only.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" {
		respond.BadRequest(w, "name and email are required")
		return
	}

	roles := make([]models.Role, 0, len(req.Roles))
	for _, name := range req.Roles {
		role, ok := models.ParseRole(name)
		if !ok {
			respond.BadRequest(w, "unknown role: "+name)
			return
		}
		roles = append(roles, role)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	user := models.NewUser(req.Name, req.Email, roles...)
	user.PasswordHash = hash
	if err := h.users.Create(r.Context(), user); err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.Created(w, user)
}

// List returns all users. Admin only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, users)
}

// GetByID returns one user. Admin only.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, user)
}

// UpdateRequest is the user update payload. Nil fields are unchanged.
type UpdateRequest struct {
	Name  *string   `json:"name"`
	Email *string   `json:"email"`
	Roles *[]string `json:"roles"`
}

// Update modifies a user's identity or global roles. Admin only.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	var req UpdateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(strings.ToLower(*req.Email))
	}
	if req.Roles != nil {
		roles := make([]models.Role, 0, len(*req.Roles))
		for _, name := range *req.Roles {
			role, ok := models.ParseRole(name)
			if !ok {
				respond.BadRequest(w, "unknown role: "+name)
				return
			}
			roles = append(roles, role)
		}
		user.Roles = roles
	}
	user.UpdatedAt = time.Now()

	if err := h.users.Update(r.Context(), user); err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, user)
}

// Delete removes a user. Fails with a conflict while the user is still
// referenced by projects, tasks or reports. Admin only.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.NoContent(w)
}

// Me returns the authenticated principal.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	respond.OK(w, user)
}

// ChangePasswordRequest is the password change payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword updates the principal's own password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req ChangePasswordRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		respond.Unauthorized(w)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now()

	if err := h.users.Update(r.Context(), user); err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.NoContent(w)
}
