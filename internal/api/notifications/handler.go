// Package notifications provides notification sink endpoints.
package notifications

import (
	"net/http"

	"github.com/obra-coop/obranet/internal/api/middleware"
	"github.com/obra-coop/obranet/internal/api/respond"
	"github.com/obra-coop/obranet/internal/notify"
)

// Handler handles notification endpoints.
type Handler struct {
	svc *notify.Service
}

// NewHandler creates a new notification handler.
func NewHandler(svc *notify.Service) *Handler {
	return &Handler{svc: svc}
}

// ListMine returns the principal's notifications newest-first. Fetching
// marks every unread notification read; the returned flags show the state
// before this call.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	notes, err := h.svc.ListMine(r.Context(), actor)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, notes)
}

// UnreadCount returns the principal's unread count without touching read
// state.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	count, err := h.svc.UnreadCount(r.Context(), actor)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, map[string]int64{"unread": count})
}
