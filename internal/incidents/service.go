// Package incidents implements the incident report lifecycle: anyone with
// reporting rights files an incident; triage (status, severity, assignee) is
// reserved for admins. The closure timestamp tracks the closed status
// exactly: set on close, cleared on reopen.
package incidents

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/obra-coop/obranet/internal/authz"
	"github.com/obra-coop/obranet/internal/blob"
	"github.com/obra-coop/obranet/internal/clock"
	"github.com/obra-coop/obranet/internal/metrics"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

// Service coordinates incident lifecycle operations.
type Service struct {
	store storage.Storage
	auth  *authz.Authorizer
	clock clock.Clock
	blobs blob.Store
}

// NewService creates an incident Service.
func NewService(store storage.Storage, auth *authz.Authorizer, clk clock.Clock, blobs blob.Store) *Service {
	return &Service{store: store, auth: auth, clock: clk, blobs: blobs}
}

// Upload is a named file payload attached to a report.
type Upload struct {
	Name string
	Data []byte
}

// ReportParams are the caller-supplied fields of a new incident report.
// Reporter name and email default to the actor's when empty.
type ReportParams struct {
	ReporterName  string
	ReporterRole  string
	ReporterEmail string
	ReporterPhone string

	Location     string
	OccurredAt   time.Time
	IncidentType string
	Description  string
	Environment  string

	AffectedPersons string
	Injuries        string
	Witnesses       string

	EquipmentInvolved string
	PropertyDamage    string

	CorrectiveActions string
	EmergencyServices bool
	EmergencyDetails  string
	RootCause         string
	PreventiveActions string

	Severity        string
	Photo           *Upload
	Attachment      *Upload
	EvidenceComment string
}

// Report files a new incident on the project. The report opens in status
// open; severity defaults to low when not supplied.
func (s *Service) Report(ctx context.Context, actor *models.User, projectID string, params ReportParams) (*models.Incident, error) {
	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapIncidentReport); err != nil {
		return nil, err
	}
	if params.Description == "" {
		return nil, fmt.Errorf("incident description required: %w", models.ErrInvalidTransition)
	}

	inc := models.NewIncident(projectID, actor.ID)
	inc.ReportedAt = s.clock.Now()
	inc.ReporterName = params.ReporterName
	if inc.ReporterName == "" {
		inc.ReporterName = actor.Name
	}
	inc.ReporterRole = params.ReporterRole
	inc.ReporterEmail = params.ReporterEmail
	if inc.ReporterEmail == "" {
		inc.ReporterEmail = actor.Email
	}
	inc.ReporterPhone = params.ReporterPhone

	inc.Location = params.Location
	inc.OccurredAt = params.OccurredAt
	if inc.OccurredAt.IsZero() {
		inc.OccurredAt = inc.ReportedAt
	}
	inc.IncidentType = params.IncidentType
	inc.Description = params.Description
	inc.Environment = params.Environment

	inc.AffectedPersons = params.AffectedPersons
	inc.Injuries = params.Injuries
	inc.Witnesses = params.Witnesses
	inc.EquipmentInvolved = params.EquipmentInvolved
	inc.PropertyDamage = params.PropertyDamage

	inc.CorrectiveActions = params.CorrectiveActions
	inc.EmergencyServices = params.EmergencyServices
	inc.EmergencyDetails = params.EmergencyDetails
	inc.RootCause = params.RootCause
	inc.PreventiveActions = params.PreventiveActions
	inc.EvidenceComment = params.EvidenceComment

	if params.Severity != "" {
		severity, ok := models.ParseSeverity(params.Severity)
		if !ok {
			return nil, fmt.Errorf("unknown severity %q: %w", params.Severity, models.ErrInvalidTransition)
		}
		inc.Severity = severity
	}

	if params.Photo != nil {
		path, err := s.blobs.Put(ctx, params.Photo.Name, params.Photo.Data)
		if err != nil {
			return nil, fmt.Errorf("store photo: %w", err)
		}
		inc.PhotoPath = path
	}
	if params.Attachment != nil {
		path, err := s.blobs.Put(ctx, params.Attachment.Name, params.Attachment.Data)
		if err != nil {
			return nil, fmt.Errorf("store attachment: %w", err)
		}
		inc.AttachmentPath = path
	}

	if err := s.store.Incidents().Create(ctx, inc); err != nil {
		return nil, err
	}
	metrics.TransitionsTotal.WithLabelValues("incident", string(models.IncidentOpen)).Inc()
	log.Printf("incident %s reported on project %s by %s", inc.ID, projectID, actor.ID)
	return inc, nil
}

// Get returns an incident visible to the actor: its reporter, or anyone
// with triage rights on the project.
func (s *Service) Get(ctx context.Context, actor *models.User, incidentID string) (*models.Incident, error) {
	inc, err := s.store.Incidents().GetByID(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if inc.ReporterID == actor.ID {
		return inc, nil
	}
	project, err := s.store.Projects().GetByID(ctx, inc.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapIncidentTriage); err != nil {
		return nil, err
	}
	return inc, nil
}

// List returns incidents matching the filter. Actors without triage rights
// on the filtered project see only their own reports.
func (s *Service) List(ctx context.Context, actor *models.User, filter storage.IncidentFilter) ([]*models.Incident, error) {
	if actor.IsAdmin() {
		return s.store.Incidents().List(ctx, filter)
	}
	if filter.ProjectID != "" {
		project, err := s.store.Projects().GetByID(ctx, filter.ProjectID)
		if err != nil {
			return nil, err
		}
		ok, err := s.auth.Authorize(ctx, actor, project, authz.CapIncidentTriage)
		if err != nil {
			return nil, err
		}
		if ok {
			return s.store.Incidents().List(ctx, filter)
		}
	}
	filter.ReporterID = actor.ID
	return s.store.Incidents().List(ctx, filter)
}

// TriageParams are the triage fields settable by an admin. Empty strings
// leave status, severity or assignee unchanged.
type TriageParams struct {
	Status        string
	Severity      string
	ResponsibleID string
}

// UpdateTriage applies a triage update. Unknown status or severity values
// are rejected rather than coerced. Moving to closed stamps the closure
// time from the zoned clock; moving out of closed clears it.
func (s *Service) UpdateTriage(ctx context.Context, actor *models.User, incidentID string, params TriageParams) (*models.Incident, error) {
	inc, err := s.store.Incidents().GetByID(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	project, err := s.store.Projects().GetByID(ctx, inc.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapIncidentTriage); err != nil {
		return nil, err
	}

	status := inc.Status
	if params.Status != "" {
		parsed, ok := models.ParseIncidentStatus(params.Status)
		if !ok {
			return nil, fmt.Errorf("unknown incident status %q: %w", params.Status, models.ErrInvalidTransition)
		}
		status = parsed
	}

	severity := inc.Severity
	if params.Severity != "" {
		parsed, ok := models.ParseSeverity(params.Severity)
		if !ok {
			return nil, fmt.Errorf("unknown severity %q: %w", params.Severity, models.ErrInvalidTransition)
		}
		severity = parsed
	}

	responsibleID := inc.ResponsibleID
	if params.ResponsibleID != "" {
		if _, err := s.store.Users().GetByID(ctx, params.ResponsibleID); err != nil {
			return nil, fmt.Errorf("responsible user: %w", err)
		}
		responsibleID = params.ResponsibleID
	}

	var closedAt *time.Time
	switch {
	case status == models.IncidentClosed && inc.ClosedAt != nil:
		closedAt = inc.ClosedAt // already closed, keep the original stamp
	case status == models.IncidentClosed:
		now := s.clock.Now()
		closedAt = &now
	}

	if err := s.store.Incidents().UpdateTriage(ctx, incidentID, status, severity, responsibleID, closedAt); err != nil {
		return nil, err
	}
	if status != inc.Status {
		metrics.TransitionsTotal.WithLabelValues("incident", string(status)).Inc()
		log.Printf("incident %s status %s -> %s by %s", incidentID, inc.Status, status, actor.ID)
	}

	inc.Status = status
	inc.Severity = severity
	inc.ResponsibleID = responsibleID
	inc.ClosedAt = closedAt
	return inc, nil
}

// Evidence fetches a stored evidence blob for an incident the actor may see.
func (s *Service) Evidence(ctx context.Context, actor *models.User, incidentID, path string) ([]byte, error) {
	inc, err := s.Get(ctx, actor, incidentID)
	if err != nil {
		return nil, err
	}
	if path != inc.PhotoPath && path != inc.AttachmentPath {
		return nil, fmt.Errorf("evidence %s: %w", path, models.ErrNotFound)
	}
	return s.blobs.Get(ctx, path)
}
