package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity grades an incident report.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity converts a string to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(s), true
	}
	return "", false
}

// IncidentStatus is the triage state of an incident report.
type IncidentStatus string

const (
	IncidentOpen          IncidentStatus = "open"
	IncidentInvestigating IncidentStatus = "investigating"
	IncidentClosed        IncidentStatus = "closed"
)

// ParseIncidentStatus converts a string to an IncidentStatus.
func ParseIncidentStatus(s string) (IncidentStatus, bool) {
	switch IncidentStatus(s) {
	case IncidentOpen, IncidentInvestigating, IncidentClosed:
		return IncidentStatus(s), true
	}
	return "", false
}

// Incident is a field incident report scoped to a project.
// Invariant: ClosedAt is set if and only if Status is closed.
type Incident struct {
	ID string `json:"id"`

	// Reporter identity, captured at filing time.
	ReportedAt    time.Time `json:"reported_at"`
	ReporterID    string    `json:"reporter_id"`
	ReporterName  string    `json:"reporter_name"`
	ReporterRole  string    `json:"reporter_role,omitempty"`
	ReporterEmail string    `json:"reporter_email"`
	ReporterPhone string    `json:"reporter_phone,omitempty"`

	// Where and what.
	ProjectID    string    `json:"project_id"`
	Location     string    `json:"location"`
	OccurredAt   time.Time `json:"occurred_at"`
	IncidentType string    `json:"incident_type"`
	Description  string    `json:"description"`
	Environment  string    `json:"environment,omitempty"` // weather, lighting, noise

	// People involved.
	AffectedPersons string `json:"affected_persons,omitempty"`
	Injuries        string `json:"injuries,omitempty"`
	Witnesses       string `json:"witnesses,omitempty"`

	// Equipment and damage.
	EquipmentInvolved string `json:"equipment_involved,omitempty"`
	PropertyDamage    string `json:"property_damage,omitempty"`

	// Actions and analysis.
	CorrectiveActions string `json:"corrective_actions"`
	EmergencyServices bool   `json:"emergency_services"`
	EmergencyDetails  string `json:"emergency_details,omitempty"`
	RootCause         string `json:"root_cause,omitempty"`
	PreventiveActions string `json:"preventive_actions,omitempty"`

	// Evidence references into the blob store.
	PhotoPath       string `json:"photo_path,omitempty"`
	AttachmentPath  string `json:"attachment_path,omitempty"`
	EvidenceComment string `json:"evidence_comment,omitempty"`

	// Triage, managed by admins.
	Severity      Severity       `json:"severity"`
	Status        IncidentStatus `json:"status"`
	ResponsibleID string         `json:"responsible_id,omitempty"`
	ClosedAt      *time.Time     `json:"closed_at,omitempty"`
}

// NewIncident creates an open Incident with default low severity.
func NewIncident(projectID, reporterID string) *Incident {
	return &Incident{
		ID:         uuid.New().String(),
		ReportedAt: time.Now(),
		ReporterID: reporterID,
		ProjectID:  projectID,
		Severity:   SeverityLow,
		Status:     IncidentOpen,
	}
}
