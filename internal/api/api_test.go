package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/obra-coop/obranet/internal/api/auth"
	"github.com/obra-coop/obranet/internal/blob"
	"github.com/obra-coop/obranet/internal/clock"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

// testEnv is a server instance running against a temp database, plus the
// seeded accounts the scenario tests operate as.
type testEnv struct {
	ts    *httptest.Server
	store *storage.SQLiteStorage

	admin  *models.User
	worker *models.User
}

func newTestEnv(t *testing.T) *testEnv {
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

	cfg := &Config{
		JWTSecret:          []byte("integration-test-secret"),
		LoginRatePerMinute: 1000,
	}
	clk := &clock.Fixed{T: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	srv, err := New(cfg, store, clk, blobs)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	env := &testEnv{
		ts:     httptest.NewServer(srv.httpServer.Handler),
		store:  store,
		admin:  seedAccount(t, store, "alice", "alice@example.com", "admin-password", models.RoleAdmin),
		worker: seedAccount(t, store, "bob", "bob@example.com", "worker-password"),
	}
	t.Cleanup(env.ts.Close)
	return env
}

func seedAccount(t *testing.T, store *storage.SQLiteStorage, name, email, password string, roles ...models.Role) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	user := models.NewUser(name, email, roles...)
	user.PasswordHash = hash
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return user
}

// do issues a JSON request and decodes the response envelope.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, json.RawMessage) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		buf = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, buf)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) == 0 {
		return resp.StatusCode, nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
	}
	return resp.StatusCode, envelope.Data
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	code, data := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	if code != http.StatusOK {
		t.Fatalf("login %s: status %d", email, code)
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatal(err)
	}
	return resp.AccessToken
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	if token := env.login(t, "alice@example.com", "admin-password"); token == "" {
		t.Fatal("empty access token")
	}

	code, _ := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	if code != http.StatusUnauthorized {
		t.Errorf("wrong password: status %d, want 401", code)
	}
	code, _ = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ghost@example.com", "password": "admin-password",
	})
	if code != http.StatusUnauthorized {
		t.Errorf("unknown email: status %d, want 401", code)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(t, http.MethodGet, "/api/v1/projects", "", nil)
	if code != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", code)
	}
	code, _ = env.do(t, http.MethodGet, "/api/v1/projects", "not-a-token", nil)
	if code != http.StatusUnauthorized {
		t.Errorf("garbage token: status %d, want 401", code)
	}
}

// TestApprovalScenario walks the full path from project creation to a
// decided approval flow and the resulting notification.
func TestApprovalScenario(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.login(t, "alice@example.com", "admin-password")
	workerTok := env.login(t, "bob@example.com", "worker-password")

	// Admin creates a project and binds the worker as member.
	code, data := env.do(t, http.MethodPost, "/api/v1/projects", adminTok, map[string]string{
		"name": "torre norte",
	})
	if code != http.StatusCreated {
		t.Fatalf("create project: status %d", code)
	}
	var project models.Project
	if err := json.Unmarshal(data, &project); err != nil {
		t.Fatal(err)
	}

	code, _ = env.do(t, http.MethodPut,
		"/api/v1/projects/"+project.ID+"/members/"+env.worker.ID, adminTok,
		map[string]string{"role": "member"})
	if code != http.StatusNoContent {
		t.Fatalf("bind role: status %d", code)
	}

	// Admin assigns the worker a task; the worker completes it.
	code, data = env.do(t, http.MethodPost, "/api/v1/projects/"+project.ID+"/tasks", adminTok,
		map[string]string{"name": "pour slab", "responsible_id": env.worker.ID})
	if code != http.StatusCreated {
		t.Fatalf("create task: status %d", code)
	}
	var task models.Task
	if err := json.Unmarshal(data, &task); err != nil {
		t.Fatal(err)
	}

	code, _ = env.do(t, http.MethodPut, "/api/v1/tasks/"+task.ID+"/status", workerTok,
		map[string]string{"status": "completed"})
	if code != http.StatusOK {
		t.Fatalf("complete task: status %d", code)
	}

	// Admin opens an approval flow with the worker as reviewer.
	code, data = env.do(t, http.MethodPost, "/api/v1/tasks/"+task.ID+"/flows", adminTok,
		map[string]string{"name": "quality gate", "reviewer_id": env.worker.ID})
	if code != http.StatusCreated {
		t.Fatalf("create flow: status %d", code)
	}
	var flow models.ApprovalFlow
	if err := json.Unmarshal(data, &flow); err != nil {
		t.Fatal(err)
	}

	// The reviewer decides once; the repeat attempt is rejected.
	code, data = env.do(t, http.MethodPost, "/api/v1/flows/"+flow.ID+"/decision", workerTok,
		map[string]string{"outcome": "approved"})
	if code != http.StatusOK {
		t.Fatalf("decide: status %d", code)
	}
	var decided models.ApprovalFlow
	if err := json.Unmarshal(data, &decided); err != nil {
		t.Fatal(err)
	}
	if decided.Status != models.ApprovalApproved || decided.ReviewedAt == nil {
		t.Errorf("decided flow = %+v, want approved with review stamp", decided)
	}

	code, _ = env.do(t, http.MethodPost, "/api/v1/flows/"+flow.ID+"/decision", workerTok,
		map[string]string{"outcome": "rejected"})
	if code != http.StatusUnprocessableEntity {
		t.Errorf("second decision: status %d, want 422", code)
	}

	// The project creator received exactly one notification; fetching the
	// list marks it read.
	code, data = env.do(t, http.MethodGet, "/api/v1/notifications/unread", adminTok, nil)
	if code != http.StatusOK {
		t.Fatalf("unread count: status %d", code)
	}
	var unread struct {
		Unread int64 `json:"unread"`
	}
	if err := json.Unmarshal(data, &unread); err != nil {
		t.Fatal(err)
	}
	if unread.Unread != 1 {
		t.Errorf("unread = %d, want 1", unread.Unread)
	}

	code, data = env.do(t, http.MethodGet, "/api/v1/notifications", adminTok, nil)
	if code != http.StatusOK {
		t.Fatalf("list notifications: status %d", code)
	}
	var notes []*models.Notification
	if err := json.Unmarshal(data, &notes); err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notes))
	}

	code, data = env.do(t, http.MethodGet, "/api/v1/notifications/unread", adminTok, nil)
	if code != http.StatusOK {
		t.Fatal("unread count after fetch")
	}
	if err := json.Unmarshal(data, &unread); err != nil {
		t.Fatal(err)
	}
	if unread.Unread != 0 {
		t.Errorf("unread after fetch = %d, want 0", unread.Unread)
	}
}

func TestProjectVisibilityAndAdminRoutes(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.login(t, "alice@example.com", "admin-password")
	workerTok := env.login(t, "bob@example.com", "worker-password")

	code, _ := env.do(t, http.MethodPost, "/api/v1/projects", adminTok, map[string]string{
		"name": "private works",
	})
	if code != http.StatusCreated {
		t.Fatalf("create project: status %d", code)
	}

	// The worker holds no binding and sees an empty directory.
	code, data := env.do(t, http.MethodGet, "/api/v1/projects", workerTok, nil)
	if code != http.StatusOK {
		t.Fatalf("list projects: status %d", code)
	}
	var list []*models.Project
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("worker sees %d projects, want 0", len(list))
	}

	// Dashboard and user administration stay admin-only.
	code, _ = env.do(t, http.MethodGet, "/api/v1/dashboard", workerTok, nil)
	if code != http.StatusForbidden {
		t.Errorf("worker dashboard: status %d, want 403", code)
	}
	code, _ = env.do(t, http.MethodGet, "/api/v1/users", workerTok, nil)
	if code != http.StatusForbidden {
		t.Errorf("worker user list: status %d, want 403", code)
	}
	code, _ = env.do(t, http.MethodGet, "/api/v1/dashboard", adminTok, nil)
	if code != http.StatusOK {
		t.Errorf("admin dashboard: status %d, want 200", code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	code, data := env.do(t, http.MethodGet, "/health", "", nil)
	if code != http.StatusOK {
		t.Fatalf("health: status %d", code)
	}
	var status map[string]string
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatal(err)
	}
	if status["status"] != "ok" {
		t.Errorf("health payload = %v", status)
	}
}
