package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/obra-coop/obranet/internal/models"
)

type sqliteTaskRepo struct {
	db *sql.DB
}

const taskColumns = `
	id, project_id, name, description, start_date, end_date, status,
	responsible_id, created_at, updated_at
`

func (r *sqliteTaskRepo) Create(ctx context.Context, task *models.Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.ID, task.ProjectID, task.Name, nullString(task.Description),
		task.StartDate, nullTime(task.EndDate), task.Status,
		nullString(task.ResponsibleID), task.CreatedAt, task.UpdatedAt,
	)
	return mapError("insert task", err)
}

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	task := &models.Task{}
	var description, responsible sql.NullString
	var endDate sql.NullTime
	err := row.Scan(
		&task.ID, &task.ProjectID, &task.Name, &description,
		&task.StartDate, &endDate, &task.Status, &responsible,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Description = description.String
	task.ResponsibleID = responsible.String
	if endDate.Valid {
		t := endDate.Time
		task.EndDate = &t
	}
	return task, nil
}

func (r *sqliteTaskRepo) GetByID(ctx context.Context, id string) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if err != nil {
		return nil, mapError("get task", err)
	}
	return task, nil
}

func (r *sqliteTaskRepo) Update(ctx context.Context, task *models.Task) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET
			name = ?, description = ?, start_date = ?, end_date = ?,
			status = ?, responsible_id = ?, updated_at = ?
		WHERE id = ?
	`,
		task.Name, nullString(task.Description), task.StartDate,
		nullTime(task.EndDate), task.Status, nullString(task.ResponsibleID),
		task.UpdatedAt, task.ID,
	)
	if err != nil {
		return mapError("update task", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("update task %s: %w", task.ID, models.ErrNotFound)
	}
	return nil
}

func (r *sqliteTaskRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return mapError("delete task", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete task %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *sqliteTaskRepo) list(ctx context.Context, where string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *sqliteTaskRepo) ListByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	return r.list(ctx, "WHERE project_id = ? ORDER BY start_date DESC", projectID)
}

func (r *sqliteTaskRepo) ListByResponsible(ctx context.Context, userID string) ([]*models.Task, error) {
	return r.list(ctx, "WHERE responsible_id = ? ORDER BY start_date DESC", userID)
}

func (r *sqliteTaskRepo) CountByStatus(ctx context.Context, status models.TaskStatus) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks WHERE status = ?", status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

func (r *sqliteTaskRepo) AddComment(ctx context.Context, comment *models.TaskComment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO task_comments (id, task_id, project_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, comment.ID, comment.TaskID, comment.ProjectID, comment.UserID,
		comment.Content, comment.CreatedAt)
	return mapError("insert comment", err)
}

func (r *sqliteTaskRepo) ListComments(ctx context.Context, taskID string) ([]*models.TaskComment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, task_id, project_id, user_id, content, created_at
		FROM task_comments WHERE task_id = ? ORDER BY created_at
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.TaskComment
	for rows.Next() {
		c := &models.TaskComment{}
		err := rows.Scan(&c.ID, &c.TaskID, &c.ProjectID, &c.UserID, &c.Content, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
