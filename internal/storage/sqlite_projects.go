package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/obra-coop/obranet/internal/models"
)

type sqliteProjectRepo struct {
	db *sql.DB
}

const projectColumns = `
	id, name, description, start_date, end_date, progress, status, archived,
	admin_comment, budget, budget_file, schedule_file, creator_id,
	created_at, updated_at
`

func (r *sqliteProjectRepo) Create(ctx context.Context, project *models.Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		project.ID, project.Name, nullString(project.Description),
		project.StartDate, nullTime(project.EndDate), project.Progress,
		project.Status, project.Archived, nullString(project.AdminComment),
		nullFloat(project.Budget), nullString(project.BudgetFile),
		nullString(project.ScheduleFile), project.CreatorID,
		project.CreatedAt, project.UpdatedAt,
	)
	return mapError("insert project", err)
}

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	project := &models.Project{}
	var description, adminComment, budgetFile, scheduleFile sql.NullString
	var endDate sql.NullTime
	var budget sql.NullFloat64
	err := row.Scan(
		&project.ID, &project.Name, &description, &project.StartDate,
		&endDate, &project.Progress, &project.Status, &project.Archived,
		&adminComment, &budget, &budgetFile, &scheduleFile,
		&project.CreatorID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	project.Description = description.String
	project.AdminComment = adminComment.String
	project.BudgetFile = budgetFile.String
	project.ScheduleFile = scheduleFile.String
	if endDate.Valid {
		t := endDate.Time
		project.EndDate = &t
	}
	if budget.Valid {
		b := budget.Float64
		project.Budget = &b
	}
	return project, nil
}

func (r *sqliteProjectRepo) GetByID(ctx context.Context, id string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	project, err := scanProject(row)
	if err != nil {
		return nil, mapError("get project", err)
	}
	return project, nil
}

func (r *sqliteProjectRepo) Update(ctx context.Context, project *models.Project) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE projects SET
			name = ?, description = ?, start_date = ?, end_date = ?,
			progress = ?, status = ?, admin_comment = ?, budget = ?,
			budget_file = ?, schedule_file = ?, updated_at = ?
		WHERE id = ?
	`,
		project.Name, nullString(project.Description), project.StartDate,
		nullTime(project.EndDate), project.Progress, project.Status,
		nullString(project.AdminComment), nullFloat(project.Budget),
		nullString(project.BudgetFile), nullString(project.ScheduleFile),
		project.UpdatedAt, project.ID,
	)
	if err != nil {
		return mapError("update project", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("update project %s: %w", project.ID, models.ErrNotFound)
	}
	return nil
}

func (r *sqliteProjectRepo) SetArchived(ctx context.Context, id string, archived bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE projects SET archived = ?, updated_at = ? WHERE id = ?",
		archived, time.Now(), id)
	if err != nil {
		return mapError("archive project", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("archive project %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *sqliteProjectRepo) list(ctx context.Context, where string, args ...any) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (r *sqliteProjectRepo) List(ctx context.Context, includeArchived bool) ([]*models.Project, error) {
	if includeArchived {
		return r.list(ctx, "ORDER BY name")
	}
	return r.list(ctx, "WHERE archived = 0 ORDER BY name")
}

func (r *sqliteProjectRepo) ListByCreator(ctx context.Context, creatorID string) ([]*models.Project, error) {
	return r.list(ctx, "WHERE creator_id = ? ORDER BY name", creatorID)
}

func (r *sqliteProjectRepo) ListForUser(ctx context.Context, userID string) ([]*models.Project, error) {
	return r.list(ctx, `
		INNER JOIN project_roles pr ON projects.id = pr.project_id
		WHERE pr.user_id = ? AND archived = 0
		ORDER BY name`, userID)
}

func (r *sqliteProjectRepo) BindRole(ctx context.Context, projectID, userID string, role models.Role) error {
	// Upsert keyed by (project, user): a user holds one role per project.
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO project_roles (project_id, user_id, role)
		VALUES (?, ?, ?)
	`, projectID, userID, role)
	return mapError("bind project role", err)
}

func (r *sqliteProjectRepo) UnbindRole(ctx context.Context, projectID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM project_roles WHERE project_id = ? AND user_id = ?",
		projectID, userID)
	if err != nil {
		return mapError("unbind project role", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("unbind project role: %w", models.ErrNotFound)
	}
	return nil
}

func (r *sqliteProjectRepo) RoleOf(ctx context.Context, projectID, userID string) (models.Role, bool, error) {
	var role models.Role
	err := r.db.QueryRowContext(ctx,
		"SELECT role FROM project_roles WHERE project_id = ? AND user_id = ?",
		projectID, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get project role: %w", err)
	}
	return role, true, nil
}

func (r *sqliteProjectRepo) Members(ctx context.Context, projectID string) ([]*models.ProjectMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, pr.role
		FROM users u
		INNER JOIN project_roles pr ON u.id = pr.user_id
		WHERE pr.project_id = ?
		ORDER BY u.name
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project members: %w", err)
	}
	defer rows.Close()

	var members []*models.ProjectMember
	for rows.Next() {
		member := &models.ProjectMember{}
		if err := rows.Scan(&member.UserID, &member.Name, &member.Email, &member.Role); err != nil {
			return nil, fmt.Errorf("scan project member: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *sqliteProjectRepo) Stats(ctx context.Context, now time.Time) (ProjectStats, error) {
	var stats ProjectStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'finished' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN end_date IS NOT NULL AND end_date < ? AND status != 'finished' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(progress), 0)
		FROM projects
	`, now).Scan(&stats.Total, &stats.Active, &stats.Finished, &stats.Overdue, &stats.AvgProgress)
	if err != nil {
		return ProjectStats{}, fmt.Errorf("project stats: %w", err)
	}
	return stats, nil
}
