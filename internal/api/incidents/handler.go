// Package incidents provides incident report endpoints.
package incidents

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/obra-coop/obranet/internal/api/middleware"
	"github.com/obra-coop/obranet/internal/api/respond"
	"github.com/obra-coop/obranet/internal/incidents"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/report"
	"github.com/obra-coop/obranet/internal/storage"
)

// Handler handles incident endpoints.
type Handler struct {
	svc      *incidents.Service
	projects storage.ProjectRepository
	renderer report.Renderer
}

// NewHandler creates a new incident handler.
func NewHandler(svc *incidents.Service, projects storage.ProjectRepository, renderer report.Renderer) *Handler {
	return &Handler{svc: svc, projects: projects, renderer: renderer}
}

// ReportRequest is the incident report payload.
type ReportRequest struct {
	ReporterName  string `json:"reporter_name"`
	ReporterRole  string `json:"reporter_role"`
	ReporterEmail string `json:"reporter_email"`
	ReporterPhone string `json:"reporter_phone"`

	Location     string     `json:"location"`
	OccurredAt   *time.Time `json:"occurred_at"`
	IncidentType string     `json:"incident_type"`
	Description  string     `json:"description"`
	Environment  string     `json:"environment"`

	AffectedPersons string `json:"affected_persons"`
	Injuries        string `json:"injuries"`
	Witnesses       string `json:"witnesses"`

	EquipmentInvolved string `json:"equipment_involved"`
	PropertyDamage    string `json:"property_damage"`

	CorrectiveActions string `json:"corrective_actions"`
	EmergencyServices bool   `json:"emergency_services"`
	EmergencyDetails  string `json:"emergency_details"`
	RootCause         string `json:"root_cause"`
	PreventiveActions string `json:"preventive_actions"`

	Severity        string `json:"severity"`
	EvidenceComment string `json:"evidence_comment"`
}

// Report files a new incident on the project named in the route.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req ReportRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	params := incidents.ReportParams{
		ReporterName:      req.ReporterName,
		ReporterRole:      req.ReporterRole,
		ReporterEmail:     req.ReporterEmail,
		ReporterPhone:     req.ReporterPhone,
		Location:          req.Location,
		IncidentType:      req.IncidentType,
		Description:       req.Description,
		Environment:       req.Environment,
		AffectedPersons:   req.AffectedPersons,
		Injuries:          req.Injuries,
		Witnesses:         req.Witnesses,
		EquipmentInvolved: req.EquipmentInvolved,
		PropertyDamage:    req.PropertyDamage,
		CorrectiveActions: req.CorrectiveActions,
		EmergencyServices: req.EmergencyServices,
		EmergencyDetails:  req.EmergencyDetails,
		RootCause:         req.RootCause,
		PreventiveActions: req.PreventiveActions,
		Severity:          req.Severity,
		EvidenceComment:   req.EvidenceComment,
	}
	if req.OccurredAt != nil {
		params.OccurredAt = *req.OccurredAt
	}

	inc, err := h.svc.Report(r.Context(), actor, chi.URLParam(r, "projectID"), params)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.Created(w, inc)
}

// ListByProject lists the project's incidents, filtered by optional status
// and severity query parameters.
func (h *Handler) ListByProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	filter := storage.IncidentFilter{
		ProjectID: chi.URLParam(r, "projectID"),
		Status:    models.IncidentStatus(r.URL.Query().Get("status")),
		Severity:  models.Severity(r.URL.Query().Get("severity")),
	}
	list, err := h.svc.List(r.Context(), actor, filter)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, list)
}

// ListMine lists incidents reported by the principal.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	list, err := h.svc.List(r.Context(), actor, storage.IncidentFilter{ReporterID: actor.ID})
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, list)
}

// GetByID returns one incident.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	inc, err := h.svc.Get(r.Context(), actor, chi.URLParam(r, "incidentID"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, inc)
}

// TriageRequest is the triage update payload. Empty fields are unchanged.
type TriageRequest struct {
	Status        string `json:"status"`
	Severity      string `json:"severity"`
	ResponsibleID string `json:"responsible_id"`
}

// UpdateTriage applies a triage update. Closing stamps the closure time;
// reopening clears it.
func (h *Handler) UpdateTriage(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req TriageRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	inc, err := h.svc.UpdateTriage(r.Context(), actor, chi.URLParam(r, "incidentID"), incidents.TriageParams{
		Status:        req.Status,
		Severity:      req.Severity,
		ResponsibleID: req.ResponsibleID,
	})
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.OK(w, inc)
}

// Download renders the incident as a downloadable report document.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.Principal(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	inc, err := h.svc.Get(r.Context(), actor, chi.URLParam(r, "incidentID"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	project, err := h.projects.GetByID(r.Context(), inc.ProjectID)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	data, contentType, err := h.renderer.RenderIncident(inc, project)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="incident-`+inc.ID+`.txt"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
