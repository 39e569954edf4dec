// Package documents provides versioned project file endpoints.
package documents

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/obra-coop/obranet/internal/api/middleware"
	"github.com/obra-coop/obranet/internal/api/respond"
	"github.com/obra-coop/obranet/internal/documents"
)

// maxUploadBytes bounds a document upload.
const maxUploadBytes = 64 << 20

// Handler handles document endpoints.
type Handler struct {
	svc *documents.Service
}

// NewHandler creates a new document handler.
func NewHandler(svc *documents.Service) *Handler {
	return &Handler{svc: svc}
}

// Upload accepts a multipart form with a file field and optional
// description, and records a new document version on the project.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
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

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.BadRequest(w, "unreadable file upload")
		return
	}

	doc, err := h.svc.Upload(r.Context(), actor, chi.URLParam(r, "projectID"),
		header.Filename, r.FormValue("description"), data)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.Created(w, doc)
}

// ListByProject lists the project's documents newest-first.
func (h *Handler) ListByProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	docs, err := h.svc.ListByProject(r.Context(), actor, chi.URLParam(r, "projectID"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, docs)
}

// Download streams a document's content.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	doc, data, err := h.svc.Download(r.Context(), actor, chi.URLParam(r, "documentID"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
