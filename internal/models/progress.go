package models

import (
	"time"

	"github.com/google/uuid"
)

// ProgressEntry is an avance: a dated progress note recorded against a
// project by a member or editor. Date is stamped in the configured
// reporting timezone.
type ProgressEntry struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// NewProgressEntry creates a ProgressEntry stamped with the given instant.
func NewProgressEntry(projectID, userID, description string, at time.Time) *ProgressEntry {
	return &ProgressEntry{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		UserID:      userID,
		Description: description,
		Date:        at,
	}
}

// ProgressPhoto references a photo in the blob store attached to an entry.
type ProgressPhoto struct {
	ID         string    `json:"id"`
	EntryID    string    `json:"entry_id"`
	Path       string    `json:"path"` // blob store path
	UploadedAt time.Time `json:"uploaded_at"`
}
