package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/obra-coop/obranet/internal/models"
)

type sqliteChecklistRepo struct {
	db *sql.DB
}

func (r *sqliteChecklistRepo) CreateItem(ctx context.Context, item *models.ChecklistItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO checklist_items (id, project_id, item_text, active)
		VALUES (?, ?, ?, ?)
	`, item.ID, item.ProjectID, item.Text, item.Active)
	return mapError("insert checklist item", err)
}

func (r *sqliteChecklistRepo) GetItem(ctx context.Context, id string) (*models.ChecklistItem, error) {
	item := &models.ChecklistItem{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, project_id, item_text, active
		FROM checklist_items WHERE id = ?
	`, id).Scan(&item.ID, &item.ProjectID, &item.Text, &item.Active)
	if err != nil {
		return nil, mapError("get checklist item", err)
	}
	return item, nil
}

func (r *sqliteChecklistRepo) ListItems(ctx context.Context, projectID string, activeOnly bool) ([]*models.ChecklistItem, error) {
	query := `
		SELECT id, project_id, item_text, active
		FROM checklist_items WHERE project_id = ?
	`
	if activeOnly {
		query += " AND active = 1"
	}
	query += " ORDER BY item_text"

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}
	defer rows.Close()

	var items []*models.ChecklistItem
	for rows.Next() {
		item := &models.ChecklistItem{}
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.Text, &item.Active); err != nil {
			return nil, fmt.Errorf("scan checklist item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *sqliteChecklistRepo) SetItemActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE checklist_items SET active = ? WHERE id = ?", active, id)
	if err != nil {
		return mapError("set checklist item active", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("checklist item %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *sqliteChecklistRepo) UpsertCompletion(ctx context.Context, c *models.Completion) error {
	// The UNIQUE(item_id, user_id, date) constraint makes this upsert
	// race-safe without a preceding read.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO checklist_completions (id, item_id, user_id, date, completed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (item_id, user_id, date)
		DO UPDATE SET completed = excluded.completed
	`, c.ID, c.ItemID, c.UserID, c.Date, c.Completed)
	return mapError("upsert completion", err)
}

func (r *sqliteChecklistRepo) CompletionsFor(ctx context.Context, userID, date string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT item_id, completed FROM checklist_completions
		WHERE user_id = ? AND date = ?
	`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	completions := make(map[string]bool)
	for rows.Next() {
		var itemID string
		var completed bool
		if err := rows.Scan(&itemID, &completed); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions[itemID] = completed
	}
	return completions, rows.Err()
}

func (r *sqliteChecklistRepo) CountCompletions(ctx context.Context, itemID, userID, date string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM checklist_completions
		WHERE item_id = ? AND user_id = ? AND date = ?
	`, itemID, userID, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return count, nil
}
