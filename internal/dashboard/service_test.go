package dashboard

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/obra-coop/obranet/internal/clock"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.SQLiteStorage, *clock.Fixed) {
	t.Helper()
	store := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Open(); err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate database: %v", err)
	}
	clk := &clock.Fixed{T: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	return NewService(store, clk), store, clk
}

func TestSummary_EmptyDatabase(t *testing.T) {
	svc, _, _ := newTestService(t)

	got, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary on empty database: %v", err)
	}
	if got.TotalProjects != 0 || got.ActiveProjects != 0 || got.FinishedProjects != 0 ||
		got.OverdueProjects != 0 || got.CompletedTasks != 0 || got.TotalIncidents != 0 {
		t.Errorf("empty summary has non-zero counts: %+v", got)
	}
	if got.AvgProgress != 0 {
		t.Errorf("avg progress = %v, want 0 with no projects", got.AvgProgress)
	}
	if len(got.ReviewerLoads) != 0 {
		t.Errorf("reviewer loads = %d, want none", len(got.ReviewerLoads))
	}
}

func TestSummary_Aggregates(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()

	owner := models.NewUser("owner", "owner@example.com", models.RoleAdmin)
	owner.PasswordHash = "hashed"
	reviewer := models.NewUser("reviewer", "reviewer@example.com")
	reviewer.PasswordHash = "hashed"
	for _, u := range []*models.User{owner, reviewer} {
		if err := store.Users().Create(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	past := clk.T.AddDate(0, -1, 0)
	future := clk.T.AddDate(0, 2, 0)

	active := models.NewProject("active", "", owner.ID)
	active.Progress = 40
	active.EndDate = &future

	overdue := models.NewProject("overdue", "", owner.ID)
	overdue.Progress = 60
	overdue.EndDate = &past

	finished := models.NewProject("finished", "", owner.ID)
	finished.Status = models.ProjectFinished
	finished.Progress = 100
	finished.EndDate = &past

	for _, p := range []*models.Project{active, overdue, finished} {
		if err := store.Projects().Create(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	done := models.NewTask(active.ID, "done", "")
	done.Status = models.TaskCompleted
	open := models.NewTask(active.ID, "open", "")
	for _, task := range []*models.Task{done, open} {
		if err := store.Tasks().Create(ctx, task); err != nil {
			t.Fatal(err)
		}
	}

	inc := models.NewIncident(active.ID, owner.ID)
	inc.Description = "spill"
	if err := store.Incidents().Create(ctx, inc); err != nil {
		t.Fatal(err)
	}

	flow := models.NewApprovalFlow(done.ID, "gate", "", reviewer.ID)
	if err := store.Approvals().Create(ctx, flow); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if got.TotalProjects != 3 {
		t.Errorf("total projects = %d, want 3", got.TotalProjects)
	}
	if got.ActiveProjects != 2 {
		t.Errorf("active projects = %d, want 2", got.ActiveProjects)
	}
	if got.FinishedProjects != 1 {
		t.Errorf("finished projects = %d, want 1", got.FinishedProjects)
	}
	// The finished project is past its end date but does not count as overdue.
	if got.OverdueProjects != 1 {
		t.Errorf("overdue projects = %d, want 1", got.OverdueProjects)
	}
	wantAvg := float64(40+60+100) / 3
	if got.AvgProgress < wantAvg-0.01 || got.AvgProgress > wantAvg+0.01 {
		t.Errorf("avg progress = %v, want %v", got.AvgProgress, wantAvg)
	}
	if got.CompletedTasks != 1 {
		t.Errorf("completed tasks = %d, want 1", got.CompletedTasks)
	}
	if got.TotalIncidents != 1 {
		t.Errorf("total incidents = %d, want 1", got.TotalIncidents)
	}
	if len(got.ReviewerLoads) != 1 || got.ReviewerLoads[0].Pending != 1 {
		t.Errorf("reviewer loads = %+v, want one reviewer with one pending flow", got.ReviewerLoads)
	}
}
