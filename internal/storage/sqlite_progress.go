package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/obra-coop/obranet/internal/models"
)

type sqliteProgressRepo struct {
	db *sql.DB
}

func (r *sqliteProgressRepo) CreateEntry(ctx context.Context, entry *models.ProgressEntry, photos []*models.ProgressPhoto) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO progress_entries (id, project_id, user_id, description, date)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID, entry.ProjectID, entry.UserID, entry.Description, entry.Date)
	if err != nil {
		return mapError("insert progress entry", err)
	}

	for _, photo := range photos {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO progress_photos (id, entry_id, path, uploaded_at)
			VALUES (?, ?, ?, ?)
		`, photo.ID, photo.EntryID, photo.Path, photo.UploadedAt)
		if err != nil {
			return mapError("insert progress photo", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit progress entry: %w", err)
	}
	return nil
}

func (r *sqliteProgressRepo) list(ctx context.Context, where string, args ...any) ([]*models.ProgressEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, user_id, description, date
		FROM progress_entries `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list progress entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.ProgressEntry
	for rows.Next() {
		entry := &models.ProgressEntry{}
		err := rows.Scan(&entry.ID, &entry.ProjectID, &entry.UserID,
			&entry.Description, &entry.Date)
		if err != nil {
			return nil, fmt.Errorf("scan progress entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *sqliteProgressRepo) ListByProject(ctx context.Context, projectID string) ([]*models.ProgressEntry, error) {
	return r.list(ctx, "WHERE project_id = ? ORDER BY date DESC", projectID)
}

func (r *sqliteProgressRepo) ListByProjectAndUser(ctx context.Context, projectID, userID string) ([]*models.ProgressEntry, error) {
	return r.list(ctx, "WHERE project_id = ? AND user_id = ? ORDER BY date DESC", projectID, userID)
}

func (r *sqliteProgressRepo) ListPhotos(ctx context.Context, entryID string) ([]*models.ProgressPhoto, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, entry_id, path, uploaded_at
		FROM progress_photos WHERE entry_id = ? ORDER BY uploaded_at
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("list progress photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.ProgressPhoto
	for rows.Next() {
		photo := &models.ProgressPhoto{}
		if err := rows.Scan(&photo.ID, &photo.EntryID, &photo.Path, &photo.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan progress photo: %w", err)
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}
