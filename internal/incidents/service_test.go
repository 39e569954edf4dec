package incidents

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/obra-coop/obranet/internal/authz"
	"github.com/obra-coop/obranet/internal/blob"
	"github.com/obra-coop/obranet/internal/clock"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.SQLiteStorage, *clock.Fixed) {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewSQLiteStorage(filepath.Join(dir, "test.db"))
	if err := store.Open(); err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate database: %v", err)
	}

	blobs, err := blob.NewLocalStore(filepath.Join(dir, "blobs"))
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}
	clk := &clock.Fixed{T: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	return NewService(store, authz.New(store.Projects()), clk, blobs), store, clk
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

func TestReport_Defaults(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()

	creator := seedUser(t, store, "creator")
	member := seedUser(t, store, "member")
	project := seedProject(t, store, creator.ID)
	if err := store.Projects().BindRole(ctx, project.ID, member.ID, models.RoleMember); err != nil {
		t.Fatal(err)
	}

	inc, err := svc.Report(ctx, member, project.ID, ReportParams{Description: "scaffold collapse near gate"})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if inc.Status != models.IncidentOpen {
		t.Errorf("status = %v, want open", inc.Status)
	}
	if inc.Severity != models.SeverityLow {
		t.Errorf("severity = %v, want low", inc.Severity)
	}
	if inc.ReporterName != member.Name || inc.ReporterEmail != member.Email {
		t.Errorf("reporter identity not defaulted: %q %q", inc.ReporterName, inc.ReporterEmail)
	}
	if !inc.OccurredAt.Equal(clk.T) {
		t.Errorf("occurred_at = %v, want reported_at %v", inc.OccurredAt, clk.T)
	}
	if inc.ClosedAt != nil {
		t.Errorf("closed_at = %v, want nil on open report", inc.ClosedAt)
	}
}

func TestReport_Validation(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	creator := seedUser(t, store, "creator")
	project := seedProject(t, store, creator.ID)

	_, err := svc.Report(ctx, creator, project.ID, ReportParams{})
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("empty description: err = %v, want ErrInvalidTransition", err)
	}

	_, err = svc.Report(ctx, creator, project.ID, ReportParams{
		Description: "fall", Severity: "catastrophic",
	})
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("unknown severity: err = %v, want ErrInvalidTransition", err)
	}

	stranger := seedUser(t, store, "stranger")
	_, err = svc.Report(ctx, stranger, project.ID, ReportParams{Description: "fall"})
	if !errors.Is(err, models.ErrForbidden) {
		t.Errorf("stranger report: err = %v, want ErrForbidden", err)
	}
}

func TestReport_StoresEvidence(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, store, "admin", models.RoleAdmin)
	project := seedProject(t, store, admin.ID)

	photo := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	inc, err := svc.Report(ctx, admin, project.ID, ReportParams{
		Description: "crane contact with power line",
		Photo:       &Upload{Name: "site.jpg", Data: photo},
	})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if inc.PhotoPath == "" {
		t.Fatal("photo path not recorded")
	}

	got, err := svc.Evidence(ctx, admin, inc.ID, inc.PhotoPath)
	if err != nil {
		t.Fatalf("evidence: %v", err)
	}
	if !bytes.Equal(got, photo) {
		t.Error("evidence bytes do not round-trip")
	}

	if _, err := svc.Evidence(ctx, admin, inc.ID, "elsewhere.bin"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("foreign path: err = %v, want ErrNotFound", err)
	}
}

func TestUpdateTriage_ClosureStamps(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, store, "admin", models.RoleAdmin)
	project := seedProject(t, store, admin.ID)
	inc, err := svc.Report(ctx, admin, project.ID, ReportParams{Description: "leak"})
	if err != nil {
		t.Fatal(err)
	}

	firstClose := clk.T
	got, err := svc.UpdateTriage(ctx, admin, inc.ID, TriageParams{Status: "closed"})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if got.ClosedAt == nil || !got.ClosedAt.Equal(firstClose) {
		t.Fatalf("closed_at = %v, want %v", got.ClosedAt, firstClose)
	}

	// Closing an already-closed incident keeps the original stamp.
	clk.Advance(2 * time.Hour)
	got, err = svc.UpdateTriage(ctx, admin, inc.ID, TriageParams{Severity: "high"})
	if err != nil {
		t.Fatal(err)
	}
	if got.ClosedAt == nil || !got.ClosedAt.Equal(firstClose) {
		t.Errorf("closed_at = %v, want original %v", got.ClosedAt, firstClose)
	}
	if got.Severity != models.SeverityHigh {
		t.Errorf("severity = %v, want high", got.Severity)
	}

	// Reopening clears the stamp.
	got, err = svc.UpdateTriage(ctx, admin, inc.ID, TriageParams{Status: "investigating"})
	if err != nil {
		t.Fatal(err)
	}
	if got.ClosedAt != nil {
		t.Errorf("closed_at = %v after reopen, want nil", got.ClosedAt)
	}

	// A fresh close stamps the advanced clock.
	got, err = svc.UpdateTriage(ctx, admin, inc.ID, TriageParams{Status: "closed"})
	if err != nil {
		t.Fatal(err)
	}
	if got.ClosedAt == nil || !got.ClosedAt.Equal(clk.T) {
		t.Errorf("closed_at = %v, want new stamp %v", got.ClosedAt, clk.T)
	}
}

func TestUpdateTriage_Validation(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, store, "admin", models.RoleAdmin)
	creator := seedUser(t, store, "creator")
	project := seedProject(t, store, creator.ID)
	if err := store.Projects().BindRole(ctx, project.ID, admin.ID, models.RoleMember); err != nil {
		t.Fatal(err)
	}
	inc, err := svc.Report(ctx, admin, project.ID, ReportParams{Description: "leak"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.UpdateTriage(ctx, admin, inc.ID, TriageParams{Status: "resolved-ish"})
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("unknown status: err = %v, want ErrInvalidTransition", err)
	}

	member := seedUser(t, store, "member")
	if err := store.Projects().BindRole(ctx, project.ID, member.ID, models.RoleMember); err != nil {
		t.Fatal(err)
	}
	_, err = svc.UpdateTriage(ctx, member, inc.ID, TriageParams{Status: "closed"})
	if !errors.Is(err, models.ErrForbidden) {
		t.Errorf("member triage: err = %v, want ErrForbidden", err)
	}
}

func TestList_ReporterScoped(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	creator := seedUser(t, store, "creator")
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	project := seedProject(t, store, creator.ID)
	for _, u := range []*models.User{alice, bob} {
		if err := store.Projects().BindRole(ctx, project.ID, u.ID, models.RoleMember); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := svc.Report(ctx, alice, project.ID, ReportParams{Description: "alice saw a spill"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Report(ctx, bob, project.ID, ReportParams{Description: "bob saw a fall"}); err != nil {
		t.Fatal(err)
	}

	mine, err := svc.List(ctx, alice, storage.IncidentFilter{ProjectID: project.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ReporterID != alice.ID {
		t.Errorf("member list sees %d incidents, want only their own", len(mine))
	}

	all, err := svc.List(ctx, creator, storage.IncidentFilter{ProjectID: project.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("creator list sees %d incidents, want 2", len(all))
	}
}
