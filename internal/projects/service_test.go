package projects

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

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

func TestCreate_NameRequired(t *testing.T) {
	svc, store := newTestService(t)
	actor := seedUser(t, store, "actor")

	_, err := svc.Create(context.Background(), actor, CreateParams{})
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("nameless project: err = %v, want ErrInvalidTransition", err)
	}

	project, err := svc.Create(context.Background(), actor, CreateParams{Name: "torre norte"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if project.CreatorID != actor.ID {
		t.Errorf("creator = %s, want actor %s", project.CreatorID, actor.ID)
	}
	if project.Status != models.ProjectActive {
		t.Errorf("status = %v, want active", project.Status)
	}
}

func TestUpdate_Validation(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	actor := seedUser(t, store, "actor")
	project, err := svc.Create(ctx, actor, CreateParams{Name: "obra"})
	if err != nil {
		t.Fatal(err)
	}

	bad := 140
	if _, err := svc.Update(ctx, actor, project.ID, UpdateParams{Progress: &bad}); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("progress 140: err = %v, want ErrInvalidTransition", err)
	}

	status := "done"
	if _, err := svc.Update(ctx, actor, project.ID, UpdateParams{Status: &status}); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("status done: err = %v, want ErrInvalidTransition", err)
	}

	good := 55
	finished := "finished"
	updated, err := svc.Update(ctx, actor, project.ID, UpdateParams{Progress: &good, Status: &finished})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Progress != 55 || updated.Status != models.ProjectFinished {
		t.Errorf("updated = %d %v, want 55 finished", updated.Progress, updated.Status)
	}
}

func TestBindRole_Rules(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	creator := seedUser(t, store, "creator")
	worker := seedUser(t, store, "worker")
	project, err := svc.Create(ctx, creator, CreateParams{Name: "obra"})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.BindRole(ctx, creator, project.ID, worker.ID, "foreman"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown role: err = %v, want ErrNotFound", err)
	}
	if err := svc.BindRole(ctx, creator, project.ID, "no-such-user", "member"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown user: err = %v, want ErrNotFound", err)
	}
	if err := svc.BindRole(ctx, worker, project.ID, worker.ID, "editor"); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("self-service bind: err = %v, want ErrForbidden", err)
	}

	if err := svc.BindRole(ctx, creator, project.ID, worker.ID, "member"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	members, err := svc.Members(ctx, creator, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 1 || members[0].Role != models.RoleMember {
		t.Fatalf("members = %+v, want one member binding", members)
	}

	if err := svc.UnbindRole(ctx, creator, project.ID, worker.ID); err != nil {
		t.Fatalf("unbind: %v", err)
	}
	if _, err := svc.Get(ctx, worker, project.ID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("unbound worker get: err = %v, want ErrForbidden", err)
	}
}

func TestList_Visibility(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, store, "admin", models.RoleAdmin)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")

	mine, err := svc.Create(ctx, alice, CreateParams{Name: "mine"})
	if err != nil {
		t.Fatal(err)
	}
	shared, err := svc.Create(ctx, bob, CreateParams{Name: "shared"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, bob, CreateParams{Name: "private"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.BindRole(ctx, bob, shared.ID, alice.ID, "reader"); err != nil {
		t.Fatal(err)
	}

	got, err := svc.List(ctx, alice, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("alice sees %d projects, want 2 (created + bound)", len(got))
	}

	all, err := svc.List(ctx, admin, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("admin sees %d projects, want 3", len(all))
	}

	// Archived projects drop out of the default listing.
	if err := svc.SetArchived(ctx, alice, mine.ID, true); err != nil {
		t.Fatal(err)
	}
	got, err = svc.List(ctx, alice, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != shared.ID {
		t.Errorf("after archive alice sees %d projects, want only the shared one", len(got))
	}
	withArchived, err := svc.List(ctx, alice, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(withArchived) != 2 {
		t.Errorf("includeArchived listing = %d projects, want 2", len(withArchived))
	}
}
