package approvals

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/obra-coop/obranet/internal/authz"
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
	return NewService(store, authz.New(store.Projects()), clk), store, clk
}

func seed(t *testing.T, store *storage.SQLiteStorage) (admin, reviewer *models.User, project *models.Project, task *models.Task) {
	t.Helper()
	ctx := context.Background()

	admin = models.NewUser("alice", "alice@example.com", models.RoleAdmin)
	admin.PasswordHash = "hashed"
	reviewer = models.NewUser("carol", "carol@example.com")
	reviewer.PasswordHash = "hashed"
	for _, u := range []*models.User{admin, reviewer} {
		if err := store.Users().Create(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	project = models.NewProject("obra central", "", admin.ID)
	if err := store.Projects().Create(ctx, project); err != nil {
		t.Fatal(err)
	}

	task = models.NewTask(project.ID, "pour slab", "")
	task.Status = models.TaskCompleted
	if err := store.Tasks().Create(ctx, task); err != nil {
		t.Fatal(err)
	}
	return admin, reviewer, project, task
}

func TestCreate_RequiresCompletedTask(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	admin, reviewer, project, _ := seed(t, store)

	pending := models.NewTask(project.ID, "still open", "")
	if err := store.Tasks().Create(ctx, pending); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Create(ctx, admin, pending.ID, "gate", "", reviewer.ID)
	if !errors.Is(err, models.ErrPreconditionFailed) {
		t.Errorf("flow on pending task: err = %v, want ErrPreconditionFailed", err)
	}
}

func TestCreate_UnknownReviewer(t *testing.T) {
	svc, store, _ := newTestService(t)
	admin, _, _, task := seed(t, store)

	_, err := svc.Create(context.Background(), admin, task.ID, "gate", "", "no-such-user")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown reviewer: err = %v, want ErrNotFound", err)
	}
}

func TestCreate_NonAdminForbidden(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	_, reviewer, project, task := seed(t, store)

	if err := store.Projects().BindRole(ctx, project.ID, reviewer.ID, models.RoleEditor); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Create(ctx, reviewer, task.ID, "gate", "", reviewer.ID)
	if !errors.Is(err, models.ErrForbidden) {
		t.Errorf("editor create flow: err = %v, want ErrForbidden", err)
	}
}

func TestDecide_OnlyReviewer(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	admin, reviewer, _, task := seed(t, store)

	flow, err := svc.Create(ctx, admin, task.ID, "quality gate", "", reviewer.ID)
	if err != nil {
		t.Fatal(err)
	}

	// Even the admin who created the flow is not the reviewer.
	_, err = svc.Decide(ctx, admin, flow.ID, "approved")
	if !errors.Is(err, models.ErrForbidden) {
		t.Errorf("non-reviewer decide: err = %v, want ErrForbidden", err)
	}
}

func TestDecide_InvalidOutcome(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	admin, reviewer, _, task := seed(t, store)

	flow, err := svc.Create(ctx, admin, task.ID, "gate", "", reviewer.ID)
	if err != nil {
		t.Fatal(err)
	}

	for _, outcome := range []string{"pending", "maybe", ""} {
		_, err := svc.Decide(ctx, reviewer, flow.ID, outcome)
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("outcome %q: err = %v, want ErrInvalidTransition", outcome, err)
		}
	}
}

func TestDecide_OnceWithNotification(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()
	admin, reviewer, project, task := seed(t, store)

	flow, err := svc.Create(ctx, admin, task.ID, "quality gate", "", reviewer.ID)
	if err != nil {
		t.Fatal(err)
	}

	decided, err := svc.Decide(ctx, reviewer, flow.ID, "approved")
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.Status != models.ApprovalApproved {
		t.Errorf("status = %v, want approved", decided.Status)
	}
	if decided.ReviewedAt == nil || !decided.ReviewedAt.Equal(clk.T) {
		t.Errorf("reviewed_at = %v, want clock time %v", decided.ReviewedAt, clk.T)
	}

	// Repeat decision, including the opposite outcome, is rejected.
	if _, err := svc.Decide(ctx, reviewer, flow.ID, "rejected"); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("second decide: err = %v, want ErrInvalidTransition", err)
	}

	// Exactly one notification reached the project creator and names the
	// reviewer, task, project and outcome.
	notes, err := store.Notifications().ListAndMarkRead(ctx, admin.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notes))
	}
	msg := notes[0].Message
	for _, needle := range []string{reviewer.Name, task.Name, project.Name, "approved"} {
		if !strings.Contains(msg, needle) {
			t.Errorf("notification %q missing %q", msg, needle)
		}
	}
}

func TestDecide_ConcurrentSingleWinner(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	admin, reviewer, _, task := seed(t, store)

	flow, err := svc.Create(ctx, admin, task.ID, "race gate", "", reviewer.ID)
	if err != nil {
		t.Fatal(err)
	}

	const attempts = 6
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Decide(ctx, reviewer, flow.ID, "rejected")
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("%d decisions succeeded, want exactly 1", wins)
	}

	count, err := store.Notifications().CountUnread(ctx, admin.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("notifications = %d, want exactly 1", count)
	}
}
