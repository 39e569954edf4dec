// Package progress implements avances: dated progress notes with photo
// attachments recorded against a project.
package progress

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/obra-coop/obranet/internal/authz"
	"github.com/obra-coop/obranet/internal/blob"
	"github.com/obra-coop/obranet/internal/clock"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

// Service coordinates progress entry operations.
type Service struct {
	store storage.Storage
	auth  *authz.Authorizer
	clock clock.Clock
	blobs blob.Store
}

// NewService creates a progress Service.
func NewService(store storage.Storage, auth *authz.Authorizer, clk clock.Clock, blobs blob.Store) *Service {
	return &Service{store: store, auth: auth, clock: clk, blobs: blobs}
}

// Photo is a named image payload attached to an entry.
type Photo struct {
	Name string
	Data []byte
}

// Record stores a progress entry stamped in the reporting timezone, with
// its photos written to the blob store and referenced from the entry.
func (s *Service) Record(ctx context.Context, actor *models.User, projectID, description string, photos []Photo) (*models.ProgressEntry, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("description required: %w", models.ErrInvalidTransition)
	}

	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapProgressRecord); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	entry := models.NewProgressEntry(projectID, actor.ID, description, now)

	stored := make([]*models.ProgressPhoto, 0, len(photos))
	for _, photo := range photos {
		path, err := s.blobs.Put(ctx, photo.Name, photo.Data)
		if err != nil {
			return nil, fmt.Errorf("store photo: %w", err)
		}
		stored = append(stored, &models.ProgressPhoto{
			ID:         uuid.New().String(),
			EntryID:    entry.ID,
			Path:       path,
			UploadedAt: now,
		})
	}

	if err := s.store.Progress().CreateEntry(ctx, entry, stored); err != nil {
		return nil, err
	}
	log.Printf("progress entry %s recorded on project %s by %s (%d photos)",
		entry.ID, projectID, actor.ID, len(stored))
	return entry, nil
}

// ListByProject returns the project's entries newest-first. Members see
// only their own entries; editors and admins see all.
func (s *Service) ListByProject(ctx context.Context, actor *models.User, projectID string) ([]*models.ProgressEntry, error) {
	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapProjectView); err != nil {
		return nil, err
	}

	all, err := s.auth.Authorize(ctx, actor, project, authz.CapProgressReview)
	if err != nil {
		return nil, err
	}
	if all {
		return s.store.Progress().ListByProject(ctx, projectID)
	}
	return s.store.Progress().ListByProjectAndUser(ctx, projectID, actor.ID)
}

// Photos lists the blob references attached to an entry.
func (s *Service) Photos(ctx context.Context, entryID string) ([]*models.ProgressPhoto, error) {
	return s.store.Progress().ListPhotos(ctx, entryID)
}
