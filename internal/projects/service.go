// Package projects implements the project directory: project CRUD,
// archiving and project-scoped role bindings.
package projects

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/obra-coop/obranet/internal/authz"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

// Service coordinates project directory operations.
type Service struct {
	store storage.Storage
	auth  *authz.Authorizer
}

// NewService creates a project Service.
func NewService(store storage.Storage, auth *authz.Authorizer) *Service {
	return &Service{store: store, auth: auth}
}

// CreateParams are the caller-supplied fields of a new project.
type CreateParams struct {
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *float64
}

// Create registers a new project. The actor becomes its creator and thereby
// its implicit admin; no explicit role binding is written for the creator.
func (s *Service) Create(ctx context.Context, actor *models.User, params CreateParams) (*models.Project, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("project name required: %w", models.ErrInvalidTransition)
	}

	project := models.NewProject(params.Name, params.Description, actor.ID)
	if params.StartDate != nil {
		project.StartDate = *params.StartDate
	}
	project.EndDate = params.EndDate
	project.Budget = params.Budget

	if err := s.store.Projects().Create(ctx, project); err != nil {
		return nil, err
	}
	log.Printf("project %s created by %s", project.ID, actor.ID)
	return project, nil
}

// Get returns a project the actor may view.
func (s *Service) Get(ctx context.Context, actor *models.User, projectID string) (*models.Project, error) {
	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapProjectView); err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateParams are the mutable fields of a project. Nil pointers leave the
// corresponding field unchanged.
type UpdateParams struct {
	Name         *string
	Description  *string
	StartDate    *time.Time
	EndDate      *time.Time
	Progress     *int
	Status       *string
	AdminComment *string
	Budget       *float64
	BudgetFile   *string
	ScheduleFile *string
}

// Update applies the given changes to a project.
func (s *Service) Update(ctx context.Context, actor *models.User, projectID string, params UpdateParams) (*models.Project, error) {
	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapProjectEdit); err != nil {
		return nil, err
	}

	if params.Name != nil {
		project.Name = *params.Name
	}
	if params.Description != nil {
		project.Description = *params.Description
	}
	if params.StartDate != nil {
		project.StartDate = *params.StartDate
	}
	if params.EndDate != nil {
		project.EndDate = params.EndDate
	}
	if params.Progress != nil {
		if *params.Progress < 0 || *params.Progress > 100 {
			return nil, fmt.Errorf("progress %d out of range: %w", *params.Progress, models.ErrInvalidTransition)
		}
		project.Progress = *params.Progress
	}
	if params.Status != nil {
		status, ok := models.ParseProjectStatus(*params.Status)
		if !ok {
			return nil, fmt.Errorf("unknown project status %q: %w", *params.Status, models.ErrInvalidTransition)
		}
		project.Status = status
	}
	if params.AdminComment != nil {
		project.AdminComment = *params.AdminComment
	}
	if params.Budget != nil {
		project.Budget = params.Budget
	}
	if params.BudgetFile != nil {
		project.BudgetFile = *params.BudgetFile
	}
	if params.ScheduleFile != nil {
		project.ScheduleFile = *params.ScheduleFile
	}
	project.UpdatedAt = time.Now()

	if err := s.store.Projects().Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// SetArchived toggles the project's archive flag. Archiving hides the
// project from default listings without deleting any of its records.
func (s *Service) SetArchived(ctx context.Context, actor *models.User, projectID string, archived bool) error {
	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapProjectEdit); err != nil {
		return err
	}
	if err := s.store.Projects().SetArchived(ctx, projectID, archived); err != nil {
		return err
	}
	log.Printf("project %s archived=%v by %s", projectID, archived, actor.ID)
	return nil
}

// List returns the projects visible to the actor: everything for global
// admins, otherwise projects the actor created or holds a role binding on.
func (s *Service) List(ctx context.Context, actor *models.User, includeArchived bool) ([]*models.Project, error) {
	if actor.IsAdmin() {
		return s.store.Projects().List(ctx, includeArchived)
	}

	created, err := s.store.Projects().ListByCreator(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	bound, err := s.store.Projects().ListForUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(created))
	var out []*models.Project
	for _, p := range append(created, bound...) {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		if p.Archived && !includeArchived {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// BindRole grants a user a role on the project, replacing any previous
// binding for that user. Unknown role names are rejected as not found so
// callers cannot probe the role namespace.
func (s *Service) BindRole(ctx context.Context, actor *models.User, projectID, userID, roleName string) error {
	role, ok := models.ParseRole(roleName)
	if !ok {
		return fmt.Errorf("role %q: %w", roleName, models.ErrNotFound)
	}

	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapRoleBind); err != nil {
		return err
	}
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return err
	}

	if err := s.store.Projects().BindRole(ctx, projectID, userID, role); err != nil {
		return err
	}
	log.Printf("role %s bound for user %s on project %s by %s", role, userID, projectID, actor.ID)
	return nil
}

// UnbindRole removes a user's role binding on the project.
func (s *Service) UnbindRole(ctx context.Context, actor *models.User, projectID, userID string) error {
	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapRoleBind); err != nil {
		return err
	}
	return s.store.Projects().UnbindRole(ctx, projectID, userID)
}

// Members lists the project's role bindings joined with user identity.
func (s *Service) Members(ctx context.Context, actor *models.User, projectID string) ([]*models.ProjectMember, error) {
	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapProjectView); err != nil {
		return nil, err
	}
	return s.store.Projects().Members(ctx, projectID)
}
