// Package progress provides avance (progress entry) endpoints.
package progress

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/obra-coop/obranet/internal/api/middleware"
	"github.com/obra-coop/obranet/internal/api/respond"
	"github.com/obra-coop/obranet/internal/progress"
)

// maxUploadBytes bounds a multipart progress upload.
const maxUploadBytes = 32 << 20

// Handler handles progress entry endpoints.
type Handler struct {
	svc *progress.Service
}

// NewHandler creates a new progress handler.
func NewHandler(svc *progress.Service) *Handler {
	return &Handler{svc: svc}
}

// Record accepts a multipart form with a description field and zero or
// more photo files, and records an avance on the project.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.BadRequest(w, "invalid multipart form")
		return
	}

	var photos []progress.Photo
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["photos"] {
			file, err := header.Open()
			if err != nil {
				respond.BadRequest(w, "unreadable photo upload")
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				respond.BadRequest(w, "unreadable photo upload")
				return
			}
			photos = append(photos, progress.Photo{Name: header.Filename, Data: data})
		}
	}

	entry, err := h.svc.Record(r.Context(), actor, chi.URLParam(r, "projectID"),
		r.FormValue("description"), photos)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.Created(w, entry)
}

// ListByProject lists entries on the project: all of them for supervisory
// roles, otherwise only the principal's own.
func (h *Handler) ListByProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	entries, err := h.svc.ListByProject(r.Context(), actor, chi.URLParam(r, "projectID"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, entries)
}

// Photos lists the photo references attached to an entry.
func (h *Handler) Photos(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.Principal(r.Context()); !ok {
		respond.Unauthorized(w)
		return
	}
	photos, err := h.svc.Photos(r.Context(), chi.URLParam(r, "entryID"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, photos)
}
