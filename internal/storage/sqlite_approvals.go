package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/obra-coop/obranet/internal/models"
)

type sqliteApprovalRepo struct {
	db *sql.DB
}

const approvalColumns = `
	id, task_id, name, description, status, reviewer_id, reviewed_at, created_at
`

func (r *sqliteApprovalRepo) Create(ctx context.Context, flow *models.ApprovalFlow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO approval_flows (`+approvalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		flow.ID, flow.TaskID, flow.Name, nullString(flow.Description),
		flow.Status, flow.ReviewerID, nullTime(flow.ReviewedAt), flow.CreatedAt,
	)
	return mapError("insert approval flow", err)
}

func scanApproval(row interface{ Scan(...any) error }) (*models.ApprovalFlow, error) {
	flow := &models.ApprovalFlow{}
	var description sql.NullString
	var reviewedAt sql.NullTime
	err := row.Scan(
		&flow.ID, &flow.TaskID, &flow.Name, &description, &flow.Status,
		&flow.ReviewerID, &reviewedAt, &flow.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	flow.Description = description.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		flow.ReviewedAt = &t
	}
	return flow, nil
}

func (r *sqliteApprovalRepo) GetByID(ctx context.Context, id string) (*models.ApprovalFlow, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+approvalColumns+" FROM approval_flows WHERE id = ?", id)
	flow, err := scanApproval(row)
	if err != nil {
		return nil, mapError("get approval flow", err)
	}
	return flow, nil
}

func (r *sqliteApprovalRepo) ListByReviewer(ctx context.Context, reviewerID string) ([]*models.ApprovalFlow, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+approvalColumns+" FROM approval_flows WHERE reviewer_id = ? ORDER BY created_at DESC",
		reviewerID)
	if err != nil {
		return nil, fmt.Errorf("list approval flows: %w", err)
	}
	defer rows.Close()

	var flows []*models.ApprovalFlow
	for rows.Next() {
		flow, err := scanApproval(rows)
		if err != nil {
			return nil, fmt.Errorf("scan approval flow: %w", err)
		}
		flows = append(flows, flow)
	}
	return flows, rows.Err()
}

func (r *sqliteApprovalRepo) ExistsForTask(ctx context.Context, taskID string) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM approval_flows WHERE task_id = ?", taskID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count approval flows: %w", err)
	}
	return count > 0, nil
}

// Decide performs the terminal transition and the notification insert in one
// transaction. The conditional UPDATE makes the transition race-safe: of two
// concurrent decisions, exactly one matches the pending row.
func (r *sqliteApprovalRepo) Decide(ctx context.Context, flowID string, outcome models.ApprovalStatus, reviewedAt time.Time, note *models.Notification) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE approval_flows SET status = ?, reviewed_at = ?
		WHERE id = ? AND status = 'pending'
	`, outcome, reviewedAt, flowID)
	if err != nil {
		return mapError("decide approval flow", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Distinguish a missing flow from one already decided.
		var exists int64
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM approval_flows WHERE id = ?", flowID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check approval flow: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("approval flow %s: %w", flowID, models.ErrNotFound)
		}
		return fmt.Errorf("approval flow %s already decided: %w", flowID, models.ErrInvalidTransition)
	}

	if note != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO notifications (id, recipient_id, title, message, read, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, note.ID, note.RecipientID, note.Title, note.Message, note.Read, note.CreatedAt)
		if err != nil {
			return mapError("insert notification", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decision: %w", err)
	}
	return nil
}

func (r *sqliteApprovalRepo) ReviewerLoads(ctx context.Context) ([]*ReviewerLoad, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.reviewer_id, u.name,
			COALESCE(SUM(CASE WHEN f.status != 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN f.status = 'pending' THEN 1 ELSE 0 END), 0)
		FROM approval_flows f
		INNER JOIN users u ON u.id = f.reviewer_id
		GROUP BY f.reviewer_id, u.name
		ORDER BY u.name
	`)
	if err != nil {
		return nil, fmt.Errorf("reviewer loads: %w", err)
	}
	defer rows.Close()

	var loads []*ReviewerLoad
	for rows.Next() {
		load := &ReviewerLoad{}
		err := rows.Scan(&load.ReviewerID, &load.ReviewerName, &load.Decided, &load.Pending)
		if err != nil {
			return nil, fmt.Errorf("scan reviewer load: %w", err)
		}
		loads = append(loads, load)
	}
	return loads, rows.Err()
}
