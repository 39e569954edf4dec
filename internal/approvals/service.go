// Package approvals implements the approval flow engine: flows attach to
// completed tasks, are decided exactly once by their assigned reviewer, and
// each decision notifies the project creator in the same transaction.
package approvals

import (
	"context"
	"fmt"
	"log"

	"github.com/obra-coop/obranet/internal/authz"
	"github.com/obra-coop/obranet/internal/clock"
	"github.com/obra-coop/obranet/internal/metrics"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

// Service coordinates approval flow operations.
type Service struct {
	store storage.Storage
	auth  *authz.Authorizer
	clock clock.Clock
}

// NewService creates an approval Service.
func NewService(store storage.Storage, auth *authz.Authorizer, clk clock.Clock) *Service {
	return &Service{store: store, auth: auth, clock: clk}
}

// Create attaches a pending approval flow to a task. The task must already
// be completed; the reviewer must exist.
func (s *Service) Create(ctx context.Context, actor *models.User, taskID, name, description, reviewerID string) (*models.ApprovalFlow, error) {
	if name == "" {
		return nil, fmt.Errorf("flow name required: %w", models.ErrInvalidTransition)
	}

	task, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	project, err := s.store.Projects().GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapFlowCreate); err != nil {
		return nil, err
	}

	if task.Status != models.TaskCompleted {
		return nil, fmt.Errorf("task %s is %s, not completed: %w",
			taskID, task.Status, models.ErrPreconditionFailed)
	}
	if _, err := s.store.Users().GetByID(ctx, reviewerID); err != nil {
		return nil, fmt.Errorf("reviewer: %w", err)
	}

	flow := models.NewApprovalFlow(taskID, name, description, reviewerID)
	if err := s.store.Approvals().Create(ctx, flow); err != nil {
		return nil, err
	}
	log.Printf("approval flow %s created for task %s, reviewer %s", flow.ID, taskID, reviewerID)
	return flow, nil
}

// Get returns an approval flow visible to the actor: its reviewer, or
// anyone who may view the underlying project.
func (s *Service) Get(ctx context.Context, actor *models.User, flowID string) (*models.ApprovalFlow, error) {
	flow, err := s.store.Approvals().GetByID(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if actor.ID == flow.ReviewerID {
		return flow, nil
	}
	task, err := s.store.Tasks().GetByID(ctx, flow.TaskID)
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
	return flow, nil
}

// ListForReviewer returns the actor's flows, pending first.
func (s *Service) ListForReviewer(ctx context.Context, actor *models.User) ([]*models.ApprovalFlow, error) {
	return s.store.Approvals().ListByReviewer(ctx, actor.ID)
}

// Decide moves a pending flow to approved or rejected. Only the assigned
// reviewer may decide; a flow is decided at most once even under concurrent
// calls. The decision and a notification to the project creator commit in
// one transaction, so either both are visible or neither is.
func (s *Service) Decide(ctx context.Context, actor *models.User, flowID, outcomeName string) (*models.ApprovalFlow, error) {
	outcome, ok := models.ParseApprovalOutcome(outcomeName)
	if !ok {
		return nil, fmt.Errorf("outcome %q: %w", outcomeName, models.ErrInvalidTransition)
	}

	flow, err := s.store.Approvals().GetByID(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if actor.ID != flow.ReviewerID {
		return nil, fmt.Errorf("user %s is not the reviewer of flow %s: %w",
			actor.ID, flowID, models.ErrForbidden)
	}

	task, err := s.store.Tasks().GetByID(ctx, flow.TaskID)
	if err != nil {
		return nil, err
	}
	project, err := s.store.Projects().GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}

	reviewedAt := s.clock.Now()
	note := models.NewNotification(project.CreatorID,
		fmt.Sprintf("Approval flow %s", outcome),
		fmt.Sprintf("%s %s flow %q for task %q in project %q",
			actor.Name, outcome, flow.Name, task.Name, project.Name))

	if err := s.store.Approvals().Decide(ctx, flowID, outcome, reviewedAt, note); err != nil {
		return nil, err
	}

	metrics.DecisionsTotal.WithLabelValues(string(outcome)).Inc()
	metrics.NotificationsCreated.Inc()
	log.Printf("approval flow %s %s by %s", flowID, outcome, actor.ID)

	flow.Status = outcome
	flow.ReviewedAt = &reviewedAt
	return flow, nil
}

// ReviewerLoads returns the per-reviewer decided/pending tallies for the
// dashboard.
func (s *Service) ReviewerLoads(ctx context.Context) ([]*storage.ReviewerLoad, error) {
	return s.store.Approvals().ReviewerLoads(ctx)
}
