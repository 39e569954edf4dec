package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded project file. The content lives in the blob
// store; only the path is recorded here. Version increments per
// (project, file name).
type Document struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	UserID      string    `json:"user_id"`
	Path        string    `json:"path"` // blob store path
	FileName    string    `json:"file_name"`
	Version     int       `json:"version"`
	Description string    `json:"description,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// NewDocument creates a version-1 Document record.
func NewDocument(projectID, userID, path, fileName, description string) *Document {
	return &Document{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		UserID:      userID,
		Path:        path,
		FileName:    fileName,
		Version:     1,
		Description: description,
		UploadedAt:  time.Now(),
	}
}
