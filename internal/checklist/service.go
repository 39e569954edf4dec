// Package checklist implements the daily checklist tracker: per-project
// items and a per-(item, user, day) completion ledger with idempotent
// upsert semantics.
package checklist

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/obra-coop/obranet/internal/authz"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

// Service coordinates checklist operations.
type Service struct {
	store storage.Storage
	auth  *authz.Authorizer
}

// NewService creates a checklist Service.
func NewService(store storage.Storage, auth *authz.Authorizer) *Service {
	return &Service{store: store, auth: auth}
}

// AddItem creates an active checklist item on the project.
func (s *Service) AddItem(ctx context.Context, actor *models.User, projectID, text string) (*models.ChecklistItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("item text required: %w", models.ErrInvalidTransition)
	}

	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapChecklistManage); err != nil {
		return nil, err
	}

	item := models.NewChecklistItem(projectID, text)
	if err := s.store.Checklists().CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// SetItemActive toggles an item. Inactive items stop appearing on daily
// views but their completion history remains.
func (s *Service) SetItemActive(ctx context.Context, actor *models.User, itemID string, active bool) error {
	item, err := s.store.Checklists().GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	project, err := s.store.Projects().GetByID(ctx, item.ProjectID)
	if err != nil {
		return err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapChecklistManage); err != nil {
		return err
	}
	return s.store.Checklists().SetItemActive(ctx, itemID, active)
}

// SetCompletion records whether the actor completed an item on the given
// day. Repeating the call for the same (item, day) overwrites the single
// existing row, so retries and double-submits are harmless.
func (s *Service) SetCompletion(ctx context.Context, actor *models.User, itemID string, day time.Time, completed bool) (*models.Completion, error) {
	item, err := s.store.Checklists().GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	project, err := s.store.Projects().GetByID(ctx, item.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapChecklistComplete); err != nil {
		return nil, err
	}

	completion := models.NewCompletion(itemID, actor.ID, day, completed)
	if err := s.store.Checklists().UpsertCompletion(ctx, completion); err != nil {
		return nil, err
	}
	log.Printf("checklist item %s set completed=%v for %s on %s", itemID, completed, actor.ID, completion.Date)
	return completion, nil
}

// ItemState is one checklist item joined with the actor's completion flag
// for a given day.
type ItemState struct {
	Item      *models.ChecklistItem `json:"item"`
	Completed bool                  `json:"completed"`
}

// DayView returns the project's active items with the actor's completion
// state for the given day. Items with no ledger row read as not completed.
func (s *Service) DayView(ctx context.Context, actor *models.User, projectID string, day time.Time) ([]*ItemState, error) {
	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Require(ctx, actor, project, authz.CapProjectView); err != nil {
		return nil, err
	}

	items, err := s.store.Checklists().ListItems(ctx, projectID, true)
	if err != nil {
		return nil, err
	}
	done, err := s.store.Checklists().CompletionsFor(ctx, actor.ID, day.Format(models.DateLayout))
	if err != nil {
		return nil, err
	}

	states := make([]*ItemState, 0, len(items))
	for _, item := range items {
		states = append(states, &ItemState{Item: item, Completed: done[item.ID]})
	}
	return states, nil
}
