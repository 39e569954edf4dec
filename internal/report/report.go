// Package report renders incident reports into downloadable documents.
// Rendering is behind an interface so the output format can change without
// touching the lifecycle code.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/obra-coop/obranet/internal/models"
)

// Renderer produces a downloadable document from an incident.
type Renderer interface {
	// RenderIncident renders the incident with its project context and
	// returns the document bytes and their MIME type.
	RenderIncident(inc *models.Incident, project *models.Project) (data []byte, contentType string, err error)
}

// TextRenderer renders incidents as plain-text reports.
type TextRenderer struct{}

// NewTextRenderer creates a TextRenderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

const timeLayout = "2006-01-02 15:04 MST"

// RenderIncident renders a structured plain-text incident report.
func (r *TextRenderer) RenderIncident(inc *models.Incident, project *models.Project) ([]byte, string, error) {
	if inc == nil || project == nil {
		return nil, "", fmt.Errorf("incident and project required")
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "INCIDENT REPORT %s\n", inc.ID)
	fmt.Fprintf(&b, "Project: %s\n", project.Name)
	fmt.Fprintf(&b, "Reported: %s by %s (%s)\n",
		inc.ReportedAt.Format(timeLayout), inc.ReporterName, inc.ReporterEmail)
	if inc.ReporterRole != "" {
		fmt.Fprintf(&b, "Reporter role: %s\n", inc.ReporterRole)
	}
	if inc.ReporterPhone != "" {
		fmt.Fprintf(&b, "Reporter phone: %s\n", inc.ReporterPhone)
	}

	b.WriteString("\n-- Event --\n")
	fmt.Fprintf(&b, "Occurred: %s\n", inc.OccurredAt.Format(timeLayout))
	writeField(&b, "Location", inc.Location)
	writeField(&b, "Type", inc.IncidentType)
	writeField(&b, "Description", inc.Description)
	writeField(&b, "Environment", inc.Environment)

	b.WriteString("\n-- People --\n")
	writeField(&b, "Affected persons", inc.AffectedPersons)
	writeField(&b, "Injuries", inc.Injuries)
	writeField(&b, "Witnesses", inc.Witnesses)

	b.WriteString("\n-- Equipment and damage --\n")
	writeField(&b, "Equipment involved", inc.EquipmentInvolved)
	writeField(&b, "Property damage", inc.PropertyDamage)

	b.WriteString("\n-- Response --\n")
	writeField(&b, "Corrective actions", inc.CorrectiveActions)
	fmt.Fprintf(&b, "Emergency services: %v\n", inc.EmergencyServices)
	writeField(&b, "Emergency details", inc.EmergencyDetails)
	writeField(&b, "Root cause", inc.RootCause)
	writeField(&b, "Preventive actions", inc.PreventiveActions)
	writeField(&b, "Evidence comment", inc.EvidenceComment)

	b.WriteString("\n-- Triage --\n")
	fmt.Fprintf(&b, "Severity: %s\n", inc.Severity)
	fmt.Fprintf(&b, "Status: %s\n", inc.Status)
	writeField(&b, "Responsible", inc.ResponsibleID)
	if inc.ClosedAt != nil {
		fmt.Fprintf(&b, "Closed: %s\n", inc.ClosedAt.Format(timeLayout))
	}

	fmt.Fprintf(&b, "\nGenerated %s\n", time.Now().Format(timeLayout))
	return b.Bytes(), "text/plain; charset=utf-8", nil
}

func writeField(b *bytes.Buffer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}
