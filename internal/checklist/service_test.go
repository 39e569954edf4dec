package checklist

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/obra-coop/obranet/internal/authz"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.SQLiteStorage) {
	t.Helper()
	store := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Open(); err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate database: %v", err)
	}
	return NewService(store, authz.New(store.Projects())), store
}

func seedUser(t *testing.T, store *storage.SQLiteStorage, name string, roles ...models.Role) *models.User {
	t.Helper()
	user := models.NewUser(name, name+"@example.com", roles...)
	user.PasswordHash = "hashed"
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedProject(t *testing.T, store *storage.SQLiteStorage, creatorID string) *models.Project {
	t.Helper()
	project := models.NewProject("obra", "", creatorID)
	if err := store.Projects().Create(context.Background(), project); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project
}

func TestAddItem_Authorization(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	creator := seedUser(t, store, "creator")
	member := seedUser(t, store, "member")
	project := seedProject(t, store, creator.ID)
	if err := store.Projects().BindRole(ctx, project.ID, member.ID, models.RoleMember); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.AddItem(ctx, member, project.ID, "wear helmet"); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("member add item: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.AddItem(ctx, creator, project.ID, "  "); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("blank item: err = %v, want ErrInvalidTransition", err)
	}

	item, err := svc.AddItem(ctx, creator, project.ID, "  wear helmet ")
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if item.Text != "wear helmet" {
		t.Errorf("text = %q, want trimmed", item.Text)
	}
	if !item.Active {
		t.Error("new item should be active")
	}
}

func TestSetCompletion_Idempotent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	creator := seedUser(t, store, "creator")
	member := seedUser(t, store, "member")
	project := seedProject(t, store, creator.ID)
	if err := store.Projects().BindRole(ctx, project.ID, member.ID, models.RoleMember); err != nil {
		t.Fatal(err)
	}
	item, err := svc.AddItem(ctx, creator, project.ID, "check harness")
	if err != nil {
		t.Fatal(err)
	}

	day := time.Date(2026, 4, 1, 14, 30, 0, 0, time.UTC)
	for _, completed := range []bool{true, false, true} {
		if _, err := svc.SetCompletion(ctx, member, item.ID, day, completed); err != nil {
			t.Fatalf("set completion %v: %v", completed, err)
		}
	}

	view, err := svc.DayView(ctx, member, project.ID, day)
	if err != nil {
		t.Fatal(err)
	}
	if len(view) != 1 {
		t.Fatalf("day view items = %d, want 1", len(view))
	}
	if !view[0].Completed {
		t.Error("final state should be completed after true/false/true")
	}

	// Stranger with no binding cannot record completions.
	stranger := seedUser(t, store, "stranger")
	if _, err := svc.SetCompletion(ctx, stranger, item.ID, day, true); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("stranger completion: err = %v, want ErrForbidden", err)
	}
}

func TestDayView_UnsetItemsReadFalse(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	creator := seedUser(t, store, "creator")
	member := seedUser(t, store, "member")
	project := seedProject(t, store, creator.ID)
	if err := store.Projects().BindRole(ctx, project.ID, member.ID, models.RoleMember); err != nil {
		t.Fatal(err)
	}

	done, err := svc.AddItem(ctx, creator, project.ID, "signed in")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddItem(ctx, creator, project.ID, "cleared debris"); err != nil {
		t.Fatal(err)
	}
	retired, err := svc.AddItem(ctx, creator, project.ID, "old rule")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.SetItemActive(ctx, creator, retired.ID, false); err != nil {
		t.Fatal(err)
	}

	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.SetCompletion(ctx, member, done.ID, day, true); err != nil {
		t.Fatal(err)
	}

	view, err := svc.DayView(ctx, member, project.ID, day)
	if err != nil {
		t.Fatal(err)
	}
	if len(view) != 2 {
		t.Fatalf("day view items = %d, want 2 active items", len(view))
	}
	for _, state := range view {
		want := state.Item.ID == done.ID
		if state.Completed != want {
			t.Errorf("item %q completed = %v, want %v", state.Item.Text, state.Completed, want)
		}
	}

	// Another member's view is independent of the first member's ledger.
	other, err := svc.DayView(ctx, creator, project.ID, day)
	if err != nil {
		t.Fatal(err)
	}
	for _, state := range other {
		if state.Completed {
			t.Errorf("item %q completed for another user", state.Item.Text)
		}
	}

	// The next day starts clean for everyone.
	next, err := svc.DayView(ctx, member, project.ID, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	for _, state := range next {
		if state.Completed {
			t.Errorf("item %q carried completion into the next day", state.Item.Text)
		}
	}
}
