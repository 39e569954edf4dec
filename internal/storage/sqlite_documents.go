package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/obra-coop/obranet/internal/models"
)

type sqliteDocumentRepo struct {
	db *sql.DB
}

// Create inserts the document with the next version for its
// (project, file name) pair, computed inside the transaction.
func (r *sqliteDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var maxVersion int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0) FROM documents
		WHERE project_id = ? AND file_name = ?
	`, doc.ProjectID, doc.FileName).Scan(&maxVersion)
	if err != nil {
		return fmt.Errorf("get document version: %w", err)
	}
	doc.Version = maxVersion + 1

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, project_id, user_id, path, file_name, version, description, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.ProjectID, doc.UserID, doc.Path, doc.FileName,
		doc.Version, nullString(doc.Description), doc.UploadedAt)
	if err != nil {
		return mapError("insert document", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit document: %w", err)
	}
	return nil
}

func (r *sqliteDocumentRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	doc := &models.Document{}
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, project_id, user_id, path, file_name, version, description, uploaded_at
		FROM documents WHERE id = ?
	`, id).Scan(&doc.ID, &doc.ProjectID, &doc.UserID, &doc.Path,
		&doc.FileName, &doc.Version, &description, &doc.UploadedAt)
	if err != nil {
		return nil, mapError("get document", err)
	}
	doc.Description = description.String
	return doc, nil
}

func (r *sqliteDocumentRepo) Update(ctx context.Context, doc *models.Document) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE documents SET path = ?, file_name = ?, description = ?
		WHERE id = ?
	`, doc.Path, doc.FileName, nullString(doc.Description), doc.ID)
	if err != nil {
		return mapError("update document", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("update document %s: %w", doc.ID, models.ErrNotFound)
	}
	return nil
}

func (r *sqliteDocumentRepo) ListByProject(ctx context.Context, projectID string) ([]*models.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, user_id, path, file_name, version, description, uploaded_at
		FROM documents WHERE project_id = ?
		ORDER BY file_name, version DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		var description sql.NullString
		err := rows.Scan(&doc.ID, &doc.ProjectID, &doc.UserID, &doc.Path,
			&doc.FileName, &doc.Version, &description, &doc.UploadedAt)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.Description = description.String
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
