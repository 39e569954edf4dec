package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	// Pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/obra-coop/obranet/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	path string
	db   *sql.DB

	users         *sqliteUserRepo
	projects      *sqliteProjectRepo
	tasks         *sqliteTaskRepo
	approvals     *sqliteApprovalRepo
	incidents     *sqliteIncidentRepo
	checklists    *sqliteChecklistRepo
	notifications *sqliteNotificationRepo
	progress      *sqliteProgressRepo
	documents     *sqliteDocumentRepo
	messages      *sqliteMessageRepo
}

// NewSQLiteStorage creates a new SQLite storage backed by the given file.
func NewSQLiteStorage(path string) *SQLiteStorage {
	return &SQLiteStorage{path: path}
}

// Open initializes the database connection.
func (s *SQLiteStorage) Open() error {
	ctx := context.Background()

	db, err := sql.Open("sqlite", "file:"+s.path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	s.db = db

	s.users = &sqliteUserRepo{db: db}
	s.projects = &sqliteProjectRepo{db: db}
	s.tasks = &sqliteTaskRepo{db: db}
	s.approvals = &sqliteApprovalRepo{db: db}
	s.incidents = &sqliteIncidentRepo{db: db}
	s.checklists = &sqliteChecklistRepo{db: db}
	s.notifications = &sqliteNotificationRepo{db: db}
	s.progress = &sqliteProgressRepo{db: db}
	s.documents = &sqliteDocumentRepo{db: db}
	s.messages = &sqliteMessageRepo{db: db}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying database connection for health checks.
func (s *SQLiteStorage) DB() *sql.DB {
	return s.db
}

// Migrate runs database migrations.
func (s *SQLiteStorage) Migrate() error {
	return runMigrations(s.db)
}

// Users returns the user repository.
func (s *SQLiteStorage) Users() UserRepository { return s.users }

// Projects returns the project repository.
func (s *SQLiteStorage) Projects() ProjectRepository { return s.projects }

// Tasks returns the task repository.
func (s *SQLiteStorage) Tasks() TaskRepository { return s.tasks }

// Approvals returns the approval flow repository.
func (s *SQLiteStorage) Approvals() ApprovalRepository { return s.approvals }

// Incidents returns the incident repository.
func (s *SQLiteStorage) Incidents() IncidentRepository { return s.incidents }

// Checklists returns the checklist repository.
func (s *SQLiteStorage) Checklists() ChecklistRepository { return s.checklists }

// Notifications returns the notification repository.
func (s *SQLiteStorage) Notifications() NotificationRepository { return s.notifications }

// Progress returns the progress entry repository.
func (s *SQLiteStorage) Progress() ProgressRepository { return s.progress }

// Documents returns the document repository.
func (s *SQLiteStorage) Documents() DocumentRepository { return s.documents }

// Messages returns the contact message repository.
func (s *SQLiteStorage) Messages() MessageRepository { return s.messages }

// EnsureAdminUser creates a default admin if no users exist.
func (s *SQLiteStorage) EnsureAdminUser() error {
	ctx := context.Background()

	count, err := s.Users().Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	password := generateRandomPassword(16)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := models.NewUser("admin", "admin@localhost", models.RoleAdmin)
	admin.PasswordHash = string(hash)

	if err := s.Users().Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	log.Printf("default admin user created: admin@localhost / %s (change this password immediately)", password)
	return nil
}

// generateRandomPassword returns a URL-safe random password of n bytes of
// entropy.
func generateRandomPassword(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("read random: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// mapError converts driver-level errors to the domain taxonomy.
func mapError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%s: %w", op, models.ErrConflict)
	case strings.Contains(err.Error(), "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%s: %w", op, models.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// nullTime converts an optional time for binding.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// nullString converts an optional string for binding; empty means NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullFloat converts an optional float for binding.
func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
