package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/obra-coop/obranet/internal/models"
)

type sqliteIncidentRepo struct {
	db *sql.DB
}

const incidentColumns = `
	id, reported_at, reporter_id, reporter_name, reporter_role, reporter_email,
	reporter_phone, project_id, location, occurred_at, incident_type,
	description, environment, affected_persons, injuries, witnesses,
	equipment_involved, property_damage, corrective_actions,
	emergency_services, emergency_details, root_cause, preventive_actions,
	photo_path, attachment_path, evidence_comment, severity, status,
	responsible_id, closed_at
`

func (r *sqliteIncidentRepo) Create(ctx context.Context, in *models.Incident) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO incidents (`+incidentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		in.ID, in.ReportedAt, in.ReporterID, in.ReporterName,
		nullString(in.ReporterRole), in.ReporterEmail, nullString(in.ReporterPhone),
		in.ProjectID, in.Location, in.OccurredAt, in.IncidentType,
		in.Description, nullString(in.Environment), nullString(in.AffectedPersons),
		nullString(in.Injuries), nullString(in.Witnesses),
		nullString(in.EquipmentInvolved), nullString(in.PropertyDamage),
		in.CorrectiveActions, in.EmergencyServices, nullString(in.EmergencyDetails),
		nullString(in.RootCause), nullString(in.PreventiveActions),
		nullString(in.PhotoPath), nullString(in.AttachmentPath),
		nullString(in.EvidenceComment), in.Severity, in.Status,
		nullString(in.ResponsibleID), nullTime(in.ClosedAt),
	)
	return mapError("insert incident", err)
}

func scanIncident(row interface{ Scan(...any) error }) (*models.Incident, error) {
	in := &models.Incident{}
	var reporterRole, reporterPhone, environment, affected, injuries sql.NullString
	var witnesses, equipment, damage, emergencyDetails, rootCause sql.NullString
	var preventive, photoPath, attachmentPath, evidenceComment, responsible sql.NullString
	var closedAt sql.NullTime
	err := row.Scan(
		&in.ID, &in.ReportedAt, &in.ReporterID, &in.ReporterName,
		&reporterRole, &in.ReporterEmail, &reporterPhone,
		&in.ProjectID, &in.Location, &in.OccurredAt, &in.IncidentType,
		&in.Description, &environment, &affected, &injuries, &witnesses,
		&equipment, &damage, &in.CorrectiveActions,
		&in.EmergencyServices, &emergencyDetails, &rootCause, &preventive,
		&photoPath, &attachmentPath, &evidenceComment,
		&in.Severity, &in.Status, &responsible, &closedAt,
	)
	if err != nil {
		return nil, err
	}
	in.ReporterRole = reporterRole.String
	in.ReporterPhone = reporterPhone.String
	in.Environment = environment.String
	in.AffectedPersons = affected.String
	in.Injuries = injuries.String
	in.Witnesses = witnesses.String
	in.EquipmentInvolved = equipment.String
	in.PropertyDamage = damage.String
	in.EmergencyDetails = emergencyDetails.String
	in.RootCause = rootCause.String
	in.PreventiveActions = preventive.String
	in.PhotoPath = photoPath.String
	in.AttachmentPath = attachmentPath.String
	in.EvidenceComment = evidenceComment.String
	in.ResponsibleID = responsible.String
	if closedAt.Valid {
		t := closedAt.Time
		in.ClosedAt = &t
	}
	return in, nil
}

func (r *sqliteIncidentRepo) GetByID(ctx context.Context, id string) (*models.Incident, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+incidentColumns+" FROM incidents WHERE id = ?", id)
	in, err := scanIncident(row)
	if err != nil {
		return nil, mapError("get incident", err)
	}
	return in, nil
}

func (r *sqliteIncidentRepo) List(ctx context.Context, filter IncidentFilter) ([]*models.Incident, error) {
	query := "SELECT " + incidentColumns + " FROM incidents WHERE 1=1"
	var args []any
	if filter.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, filter.ProjectID)
	}
	if filter.ReporterID != "" {
		query += " AND reporter_id = ?"
		args = append(args, filter.ReporterID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Severity != "" {
		query += " AND severity = ?"
		args = append(args, filter.Severity)
	}
	query += " ORDER BY reported_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	var incidents []*models.Incident
	for rows.Next() {
		in, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		incidents = append(incidents, in)
	}
	return incidents, rows.Err()
}

func (r *sqliteIncidentRepo) UpdateTriage(ctx context.Context, id string, status models.IncidentStatus, severity models.Severity, responsibleID string, closedAt *time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE incidents SET status = ?, severity = ?, responsible_id = ?, closed_at = ?
		WHERE id = ?
	`, status, severity, nullString(responsibleID), nullTime(closedAt), id)
	if err != nil {
		return mapError("update incident triage", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("update incident %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *sqliteIncidentRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM incidents").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count incidents: %w", err)
	}
	return count, nil
}
