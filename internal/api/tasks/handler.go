// Package tasks provides task lifecycle endpoints.
package tasks

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/obra-coop/obranet/internal/api/middleware"
	"github.com/obra-coop/obranet/internal/api/respond"
	"github.com/obra-coop/obranet/internal/tasks"
)

// Handler handles task endpoints.
type Handler struct {
	svc *tasks.Service
}

// NewHandler creates a new task handler.
func NewHandler(svc *tasks.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateRequest is the task creation payload.
type CreateRequest struct {
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	ResponsibleID string     `json:"responsible_id"`
}

// Create adds a task to the project named in the route.
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

	task, err := h.svc.Create(r.Context(), actor, chi.URLParam(r, "projectID"), tasks.CreateParams{
		Name:          req.Name,
		Description:   req.Description,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		ResponsibleID: req.ResponsibleID,
	})
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.Created(w, task)
}

// ListByProject lists the project's tasks.
func (h *Handler) ListByProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	list, err := h.svc.ListByProject(r.Context(), actor, chi.URLParam(r, "projectID"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, list)
}

// ListMine lists the principal's assigned tasks across projects.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	list, err := h.svc.ListMine(r.Context(), actor)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, list)
}

// GetByID returns one task.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	task, err := h.svc.Get(r.Context(), actor, chi.URLParam(r, "taskID"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, task)
}

// UpdateRequest is the task update payload. Nil fields are unchanged.
type UpdateRequest struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	ResponsibleID *string    `json:"responsible_id"`
}

// Update modifies a task's descriptive fields.
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
	task, err := h.svc.Update(r.Context(), actor, chi.URLParam(r, "taskID"), tasks.UpdateParams{
		Name:          req.Name,
		Description:   req.Description,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		ResponsibleID: req.ResponsibleID,
	})
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, task)
}

// StatusRequest is the status change payload.
type StatusRequest struct {
	Status string `json:"status"`
}

// SetStatus moves a task through its lifecycle.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req StatusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	task, err := h.svc.SetStatus(r.Context(), actor, chi.URLParam(r, "taskID"), req.Status)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, task)
}

// Delete removes a task and its comments.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	if err := h.svc.Delete(r.Context(), actor, chi.URLParam(r, "taskID")); err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.NoContent(w)
}

// CommentRequest is the comment payload.
type CommentRequest struct {
	Content string `json:"content"`
}

// AddComment attaches a comment to a task.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req CommentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	comment, err := h.svc.Comment(r.Context(), actor, chi.URLParam(r, "taskID"), req.Content)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.Created(w, comment)
}

// ListComments lists a task's comments oldest-first.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	comments, err := h.svc.Comments(r.Context(), actor, chi.URLParam(r, "taskID"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, comments)
}
