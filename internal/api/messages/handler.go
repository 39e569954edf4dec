// Package messages provides contact form endpoints: public submission and
// admin management.
package messages

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/obra-coop/obranet/internal/api/respond"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

// Handler handles contact message endpoints.
type Handler struct {
	messages storage.MessageRepository
}

// NewHandler creates a new contact message handler.
func NewHandler(messages storage.MessageRepository) *Handler {
	return &Handler{messages: messages}
}

// SubmitRequest is the public contact form payload.
type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Message string `json:"message"`
}

// Submit records a contact form message. Public endpoint.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		respond.BadRequest(w, "name, email and message are required")
		return
	}

	msg := models.NewContactMessage(req.Name, req.Email, req.Phone, req.Company, req.Message)
	if err := h.messages.Create(r.Context(), msg); err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.Created(w, map[string]string{"id": msg.ID})
}

// List returns all contact messages newest-first. Admin only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messages.List(r.Context())
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, msgs)
}

// ReadRequest is the read toggle payload.
type ReadRequest struct {
	Read bool `json:"read"`
}

// SetRead toggles a message's read flag. Admin only.
func (h *Handler) SetRead(w http.ResponseWriter, r *http.Request) {
	var req ReadRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if err := h.messages.SetRead(r.Context(), chi.URLParam(r, "messageID"), req.Read); err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.NoContent(w)
}

// Delete removes a message. Admin only.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.messages.Delete(r.Context(), chi.URLParam(r, "messageID")); err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.NoContent(w)
}
