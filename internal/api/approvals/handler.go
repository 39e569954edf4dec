// Package approvals provides approval flow endpoints.
package approvals

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/obra-coop/obranet/internal/api/middleware"
	"github.com/obra-coop/obranet/internal/api/respond"
	"github.com/obra-coop/obranet/internal/approvals"
)

// Handler handles approval flow endpoints.
type Handler struct {
	svc *approvals.Service
}

// NewHandler creates a new approval flow handler.
func NewHandler(svc *approvals.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateRequest is the flow creation payload.
type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ReviewerID  string `json:"reviewer_id"`
}

// Create attaches a pending flow to the task named in the route.
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
	flow, err := h.svc.Create(r.Context(), actor, chi.URLParam(r, "taskID"),
		req.Name, req.Description, req.ReviewerID)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.Created(w, flow)
}

// ListMine lists flows assigned to the principal, pending first.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	flows, err := h.svc.ListForReviewer(r.Context(), actor)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, flows)
}

// GetByID returns one flow.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	flow, err := h.svc.Get(r.Context(), actor, chi.URLParam(r, "flowID"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, flow)
}

// DecisionRequest is the decision payload.
type DecisionRequest struct {
	Outcome string `json:"outcome"` // approved or rejected
}

// Decide records the reviewer's decision. A flow is decided at most once;
// repeating the call yields an invalid transition error.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req DecisionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	flow, err := h.svc.Decide(r.Context(), actor, chi.URLParam(r, "flowID"), req.Outcome)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, flow)
}
