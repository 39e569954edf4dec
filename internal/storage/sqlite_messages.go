package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/obra-coop/obranet/internal/models"
)

type sqliteMessageRepo struct {
	db *sql.DB
}

func (r *sqliteMessageRepo) Create(ctx context.Context, msg *models.ContactMessage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contact_messages (id, name, email, phone, company, message, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.Name, msg.Email, nullString(msg.Phone),
		nullString(msg.Company), msg.Message, msg.Read, msg.CreatedAt)
	return mapError("insert contact message", err)
}

func (r *sqliteMessageRepo) List(ctx context.Context) ([]*models.ContactMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, phone, company, message, read, created_at
		FROM contact_messages ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	var msgs []*models.ContactMessage
	for rows.Next() {
		msg := &models.ContactMessage{}
		var phone, company sql.NullString
		err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &phone, &company,
			&msg.Message, &msg.Read, &msg.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		msg.Phone = phone.String
		msg.Company = company.String
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *sqliteMessageRepo) SetRead(ctx context.Context, id string, read bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE contact_messages SET read = ? WHERE id = ?", read, id)
	if err != nil {
		return mapError("set message read", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("contact message %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *sqliteMessageRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM contact_messages WHERE id = ?", id)
	if err != nil {
		return mapError("delete contact message", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("contact message %s: %w", id, models.ErrNotFound)
	}
	return nil
}
