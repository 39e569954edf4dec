// Package documents implements versioned project file uploads. Content
// lives in the blob store; uploading a file name that already exists on the
// project records a new version rather than overwriting.
package documents

import (
	"context"
	"fmt"
	"log"

	"github.com/obra-coop/obranet/internal/authz"
	"github.com/obra-coop/obranet/internal/blob"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

// Service coordinates document operations.
type Service struct {
	store storage.Storage
	auth  *authz.Authorizer
	blobs blob.Store
}

// NewService creates a document Service.
func NewService(store storage.Storage, auth *authz.Authorizer, blobs blob.Store) *Service {
	return &Service{store: store, auth: auth, blobs: blobs}
}

// Upload stores the file content and records a document row with the next
// version number for its (project, file name) pair.
func (s *Service) Upload(ctx context.Context, actor *models.User, projectID, fileName, description string, data []byte) (*models.Document, error) {
	if fileName == "" || len(data) == 0 {
		return nil, fmt.Errorf("file name and content required: %w", models.ErrInvalidTransition)
	}

	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapDocumentUpload); err != nil {
		return nil, err
	}

	path, err := s.blobs.Put(ctx, fileName, data)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	doc := models.NewDocument(projectID, actor.ID, path, fileName, description)
	if err := s.store.Documents().Create(ctx, doc); err != nil {
		return nil, err
	}
	log.Printf("document %s (v%d of %s) uploaded to project %s by %s",
		doc.ID, doc.Version, fileName, projectID, actor.ID)
	return doc, nil
}

// ListByProject returns the project's documents newest-first.
func (s *Service) ListByProject(ctx context.Context, actor *models.User, projectID string) ([]*models.Document, error) {
	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapProjectView); err != nil {
		return nil, err
	}
	return s.store.Documents().ListByProject(ctx, projectID)
}

// Download fetches a document's content for an actor who may view the
// project.
func (s *Service) Download(ctx context.Context, actor *models.User, documentID string) (*models.Document, []byte, error) {
	doc, err := s.store.Documents().GetByID(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	project, err := s.store.Projects().GetByID(ctx, doc.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapProjectView); err != nil {
		return nil, nil, err
	}

	data, err := s.blobs.Get(ctx, doc.Path)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}
