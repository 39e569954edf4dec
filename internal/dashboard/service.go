// Package dashboard aggregates read-only KPIs across projects, tasks,
// incidents and approval flows. It performs no writes and tolerates empty
// tables, reporting zeros instead of errors.
package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/obra-coop/obranet/internal/clock"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

// Summary is the aggregated dashboard payload.
type Summary struct {
	TotalProjects    int64                   `json:"total_projects"`
	ActiveProjects   int64                   `json:"active_projects"`
	FinishedProjects int64                   `json:"finished_projects"`
	OverdueProjects  int64                   `json:"overdue_projects"`
	AvgProgress      float64                 `json:"avg_progress"`
	CompletedTasks   int64                   `json:"completed_tasks"`
	TotalIncidents   int64                   `json:"total_incidents"`
	ReviewerLoads    []*storage.ReviewerLoad `json:"reviewer_loads"`
}

// Service computes dashboard summaries.
type Service struct {
	store storage.Storage
	clock clock.Clock
}

// NewService creates a dashboard Service.
func NewService(store storage.Storage, clk clock.Clock) *Service {
	return &Service{store: store, clock: clk}
}

// Summary fans the four aggregate queries out concurrently and assembles
// the result. Overdue counts are relative to the zoned clock's now.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var (
		stats     storage.ProjectStats
		completed int64
		incidents int64
		loads     []*storage.ReviewerLoad
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.store.Projects().Stats(gctx, s.clock.Now())
		return err
	})
	g.Go(func() error {
		var err error
		completed, err = s.store.Tasks().CountByStatus(gctx, models.TaskCompleted)
		return err
	})
	g.Go(func() error {
		var err error
		incidents, err = s.store.Incidents().Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		loads, err = s.store.Approvals().ReviewerLoads(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Summary{
		TotalProjects:    stats.Total,
		ActiveProjects:   stats.Active,
		FinishedProjects: stats.Finished,
		OverdueProjects:  stats.Overdue,
		AvgProgress:      stats.AvgProgress,
		CompletedTasks:   completed,
		TotalIncidents:   incidents,
		ReviewerLoads:    loads,
	}, nil
}
