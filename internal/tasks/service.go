// Package tasks implements the task lifecycle within a project.
package tasks

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/obra-coop/obranet/internal/authz"
	"github.com/obra-coop/obranet/internal/clock"
	"github.com/obra-coop/obranet/internal/metrics"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

// Service coordinates task lifecycle operations.
type Service struct {
	store storage.Storage
	auth  *authz.Authorizer
	clock clock.Clock
}

// NewService creates a task Service.
func NewService(store storage.Storage, auth *authz.Authorizer, clk clock.Clock) *Service {
	return &Service{store: store, auth: auth, clock: clk}
}

// CreateParams are the caller-supplied fields of a new task.
type CreateParams struct {
	Name          string
	Description   string
	StartDate     *time.Time
	EndDate       *time.Time
	ResponsibleID string
}

// Create adds a task to the project, optionally assigned to a responsible
// user.
func (s *Service) Create(ctx context.Context, actor *models.User, projectID string, params CreateParams) (*models.Task, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("task name required: %w", models.ErrInvalidTransition)
	}

	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapTaskCreate); err != nil {
		return nil, err
	}
	if params.ResponsibleID != "" {
		if _, err := s.store.Users().GetByID(ctx, params.ResponsibleID); err != nil {
			return nil, fmt.Errorf("responsible user: %w", err)
		}
	}

	task := models.NewTask(projectID, params.Name, params.Description)
	if params.StartDate != nil {
		task.StartDate = *params.StartDate
	}
	task.EndDate = params.EndDate
	task.ResponsibleID = params.ResponsibleID

	if err := s.store.Tasks().Create(ctx, task); err != nil {
		return nil, err
	}
	log.Printf("task %s created in project %s by %s", task.ID, projectID, actor.ID)
	return task, nil
}

// Get returns a task the actor may view.
func (s *Service) Get(ctx context.Context, actor *models.User, taskID string) (*models.Task, error) {
	task, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	project, err := s.store.Projects().GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapProjectView); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateParams are the mutable descriptive fields of a task. Status changes
// go through SetStatus.
type UpdateParams struct {
	Name          *string
	Description   *string
	StartDate     *time.Time
	EndDate       *time.Time
	ResponsibleID *string
}

// Update applies descriptive changes to a task.
func (s *Service) Update(ctx context.Context, actor *models.User, taskID string, params UpdateParams) (*models.Task, error) {
	task, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	project, err := s.store.Projects().GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapTaskEdit); err != nil {
		return nil, err
	}

	if params.Name != nil {
		task.Name = *params.Name
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.StartDate != nil {
		task.StartDate = *params.StartDate
	}
	if params.EndDate != nil {
		task.EndDate = params.EndDate
	}
	if params.ResponsibleID != nil {
		if *params.ResponsibleID != "" {
			if _, err := s.store.Users().GetByID(ctx, *params.ResponsibleID); err != nil {
				return nil, fmt.Errorf("responsible user: %w", err)
			}
		}
		task.ResponsibleID = *params.ResponsibleID
	}
	task.UpdatedAt = s.clock.Now()

	if err := s.store.Tasks().Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// SetStatus moves a task to a new lifecycle status. Only the responsible
// user, the project creator, or a principal whose role grants task.status
// may change it. Leaving completed is refused once an approval flow
// references the task.
func (s *Service) SetStatus(ctx context.Context, actor *models.User, taskID, statusName string) (*models.Task, error) {
	status, ok := models.ParseTaskStatus(statusName)
	if !ok {
		return nil, fmt.Errorf("unknown task status %q: %w", statusName, models.ErrInvalidTransition)
	}

	task, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if actor.ID != task.ResponsibleID {
		project, err := s.store.Projects().GetByID(ctx, task.ProjectID)
		if err != nil {
			return nil, err
		}
		if err := s.auth.Require(ctx, actor, project, authz.CapTaskStatus); err != nil {
			return nil, err
		}
	}

	if task.Status == models.TaskCompleted && status != models.TaskCompleted {
		exists, err := s.store.Approvals().ExistsForTask(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("task %s has approval flows: %w", taskID, models.ErrInvalidTransition)
		}
	}

	from := task.Status
	task.Status = status
	task.UpdatedAt = s.clock.Now()
	if err := s.store.Tasks().Update(ctx, task); err != nil {
		return nil, err
	}
	metrics.TransitionsTotal.WithLabelValues("task", string(status)).Inc()
	log.Printf("task %s status %s -> %s by %s", taskID, from, status, actor.ID)
	return task, nil
}

// Delete removes a task and its comments.
func (s *Service) Delete(ctx context.Context, actor *models.User, taskID string) error {
	task, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	project, err := s.store.Projects().GetByID(ctx, task.ProjectID)
	if err != nil {
		return err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapTaskEdit); err != nil {
		return err
	}
	return s.store.Tasks().Delete(ctx, taskID)
}

// ListByProject returns the project's tasks for an actor who may view it.
func (s *Service) ListByProject(ctx context.Context, actor *models.User, projectID string) ([]*models.Task, error) {
	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapProjectView); err != nil {
		return nil, err
	}
	return s.store.Tasks().ListByProject(ctx, projectID)
}

// ListMine returns tasks assigned to the actor across all projects.
func (s *Service) ListMine(ctx context.Context, actor *models.User) ([]*models.Task, error) {
	return s.store.Tasks().ListByResponsible(ctx, actor.ID)
}

// Comment attaches a free-text comment to a task. The responsible user may
// always comment on their own task.
func (s *Service) Comment(ctx context.Context, actor *models.User, taskID, content string) (*models.TaskComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty comment: %w", models.ErrInvalidTransition)
	}

	task, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if actor.ID != task.ResponsibleID {
		project, err := s.store.Projects().GetByID(ctx, task.ProjectID)
		if err != nil {
			return nil, err
		}
		if err := s.auth.Require(ctx, actor, project, authz.CapProjectView); err != nil {
			return nil, err
		}
	}

	comment := &models.TaskComment{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		ProjectID: task.ProjectID,
		UserID:    actor.ID,
		Content:   content,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.Tasks().AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Comments lists a task's comments oldest-first.
func (s *Service) Comments(ctx context.Context, actor *models.User, taskID string) ([]*models.TaskComment, error) {
	if _, err := s.Get(ctx, actor, taskID); err != nil {
		return nil, err
	}
	return s.store.Tasks().ListComments(ctx, taskID)
}
