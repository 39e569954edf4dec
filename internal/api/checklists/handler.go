// Package checklists provides daily checklist endpoints.
package checklists

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/obra-coop/obranet/internal/api/middleware"
	"github.com/obra-coop/obranet/internal/api/respond"
	"github.com/obra-coop/obranet/internal/checklist"
	"github.com/obra-coop/obranet/internal/clock"
	"github.com/obra-coop/obranet/internal/models"
)

// Handler handles checklist endpoints.
type Handler struct {
	svc   *checklist.Service
	clock clock.Clock
}

// NewHandler creates a new checklist handler.
func NewHandler(svc *checklist.Service, clk clock.Clock) *Handler {
	return &Handler{svc: svc, clock: clk}
}

// ItemRequest is the item creation payload.
type ItemRequest struct {
	Text string `json:"text"`
}

// AddItem creates a checklist item on the project named in the route.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req ItemRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	item, err := h.svc.AddItem(r.Context(), actor, chi.URLParam(r, "projectID"), req.Text)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.Created(w, item)
}

// ActiveRequest is the item toggle payload.
type ActiveRequest struct {
	Active bool `json:"active"`
}

// SetItemActive toggles a checklist item.
func (h *Handler) SetItemActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req ActiveRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if err := h.svc.SetItemActive(r.Context(), actor, chi.URLParam(r, "itemID"), req.Active); err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.NoContent(w)
}

// CompletionRequest is the completion payload. Date defaults to today in
// the reporting timezone.
type CompletionRequest struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Completed bool   `json:"completed"`
}

// SetCompletion records the principal's completion state for an item and
// day. Safe to repeat: the single ledger row is overwritten.
func (h *Handler) SetCompletion(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req CompletionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	day := h.clock.Now()
	if req.Date != "" {
		parsed, err := time.Parse(models.DateLayout, req.Date)
		if err != nil {
			respond.BadRequest(w, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	completion, err := h.svc.SetCompletion(r.Context(), actor, chi.URLParam(r, "itemID"), day, req.Completed)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, completion)
}

// DayView returns the project's active items with the principal's
// completion state for the requested day (default today).
func (h *Handler) DayView(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	day := h.clock.Now()
	if q := r.URL.Query().Get("date"); q != "" {
		parsed, err := time.Parse(models.DateLayout, q)
		if err != nil {
			respond.BadRequest(w, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	states, err := h.svc.DayView(r.Context(), actor, chi.URLParam(r, "projectID"), day)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, states)
}
