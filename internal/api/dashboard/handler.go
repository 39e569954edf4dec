// Package dashboard provides the aggregated KPI endpoint.
package dashboard

import (
	"net/http"

	"github.com/obra-coop/obranet/internal/api/respond"
	"github.com/obra-coop/obranet/internal/dashboard"
)

// Handler handles dashboard endpoints.
type Handler struct {
	svc *dashboard.Service
}

// NewHandler creates a new dashboard handler.
func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc}
}

// Summary returns the cross-project aggregates. Empty tables produce
// zeros, not errors.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, summary)
}
