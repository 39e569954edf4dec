// Package projects provides project directory endpoints.
package projects

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/obra-coop/obranet/internal/api/middleware"
	"github.com/obra-coop/obranet/internal/api/respond"
	"github.com/obra-coop/obranet/internal/projects"
)

// Handler handles project endpoints.
type Handler struct {
	svc *projects.Service
}

// NewHandler creates a new project handler.
func NewHandler(svc *projects.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateRequest is the project creation payload.
type CreateRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Budget      *float64   `json:"budget"`
}

// Create registers a new project owned by the principal.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req CreateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	project, err := h.svc.Create(r.Context(), actor, projects.CreateParams{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
	})
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.Created(w, project)
}

// List returns the projects visible to the principal.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	includeArchived := r.URL.Query().Get("include_archived") == "true"

	list, err := h.svc.List(r.Context(), actor, includeArchived)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, list)
}

// GetByID returns one project.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	project, err := h.svc.Get(r.Context(), actor, chi.URLParam(r, "projectID"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, project)
}

// UpdateRequest is the project update payload. Nil fields are unchanged.
type UpdateRequest struct {
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Progress     *int       `json:"progress"`
	Status       *string    `json:"status"`
	AdminComment *string    `json:"admin_comment"`
	Budget       *float64   `json:"budget"`
}

// Update modifies a project.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req UpdateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	project, err := h.svc.Update(r.Context(), actor, chi.URLParam(r, "projectID"), projects.UpdateParams{
		Name:         req.Name,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Progress:     req.Progress,
		Status:       req.Status,
		AdminComment: req.AdminComment,
		Budget:       req.Budget,
	})
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, project)
}

// ArchiveRequest is the archive toggle payload.
type ArchiveRequest struct {
	Archived bool `json:"archived"`
}

// SetArchived toggles the archive flag.
func (h *Handler) SetArchived(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req ArchiveRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if err := h.svc.SetArchived(r.Context(), actor, chi.URLParam(r, "projectID"), req.Archived); err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.NoContent(w)
}

// Members lists the project's role bindings.
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	members, err := h.svc.Members(r.Context(), actor, chi.URLParam(r, "projectID"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, members)
}

// BindRoleRequest is the role binding payload.
type BindRoleRequest struct {
	Role string `json:"role"`
}

// BindRole grants a user a role on the project, replacing any previous one.
func (h *Handler) BindRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req BindRoleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	err := h.svc.BindRole(r.Context(), actor,
		chi.URLParam(r, "projectID"), chi.URLParam(r, "userID"), req.Role)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.NoContent(w)
}

// UnbindRole removes a user's role binding.
func (h *Handler) UnbindRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	err := h.svc.UnbindRole(r.Context(), actor,
		chi.URLParam(r, "projectID"), chi.URLParam(r, "userID"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.NoContent(w)
}
