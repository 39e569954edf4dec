package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/obra-coop/obranet/internal/models"
)

type sqliteNotificationRepo struct {
	db *sql.DB
}

func (r *sqliteNotificationRepo) Create(ctx context.Context, note *models.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, title, message, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, note.ID, note.RecipientID, note.Title, note.Message, note.Read, note.CreatedAt)
	return mapError("insert notification", err)
}

// ListAndMarkRead returns the recipient's notifications newest-first. The
// read state returned reflects the state before this fetch; all unread rows
// flip to read in the same transaction.
func (r *sqliteNotificationRepo) ListAndMarkRead(ctx context.Context, recipientID string) ([]*models.Notification, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, recipient_id, title, message, read, created_at
		FROM notifications WHERE recipient_id = ?
		ORDER BY created_at DESC
	`, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	var notes []*models.Notification
	for rows.Next() {
		note := &models.Notification{}
		err := rows.Scan(&note.ID, &note.RecipientID, &note.Title,
			&note.Message, &note.Read, &note.CreatedAt)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	_, err = tx.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE recipient_id = ? AND read = 0",
		recipientID)
	if err != nil {
		return nil, fmt.Errorf("mark notifications read: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mark-as-read: %w", err)
	}
	return notes, nil
}

func (r *sqliteNotificationRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND read = 0",
		recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
