// Package storage provides database storage interfaces and implementations.
package storage

import (
	"context"
	"time"

	"github.com/obra-coop/obranet/internal/models"
)

// Storage is the main interface for database operations.
type Storage interface {
	// Open initializes the database connection.
	Open() error
	// Close closes the database connection.
	Close() error
	// Migrate runs database migrations.
	Migrate() error
	// EnsureAdminUser creates a default admin if no users exist.
	EnsureAdminUser() error

	// Repository accessors
	Users() UserRepository
	Projects() ProjectRepository
	Tasks() TaskRepository
	Approvals() ApprovalRepository
	Incidents() IncidentRepository
	Checklists() ChecklistRepository
	Notifications() NotificationRepository
	Progress() ProgressRepository
	Documents() DocumentRepository
	Messages() MessageRepository
}

// UserRepository defines operations for user management.
// Delete fails with models.ErrConflict while other entities reference the
// user; users are never cascade-deleted.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// ProjectStats are dashboard aggregates over projects. Zero rows yield
// zero values, never an error.
type ProjectStats struct {
	Total       int64
	Active      int64
	Finished    int64
	Overdue     int64
	AvgProgress float64
}

// ProjectRepository defines operations for projects and their role bindings.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	SetArchived(ctx context.Context, id string, archived bool) error
	List(ctx context.Context, includeArchived bool) ([]*models.Project, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*models.Project, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Project, error)

	// BindRole upserts the (project, user) binding to the given role.
	BindRole(ctx context.Context, projectID, userID string, role models.Role) error
	UnbindRole(ctx context.Context, projectID, userID string) error
	// RoleOf returns the user's role on the project; ok is false when the
	// user holds no binding there.
	RoleOf(ctx context.Context, projectID, userID string) (role models.Role, ok bool, err error)
	Members(ctx context.Context, projectID string) ([]*models.ProjectMember, error)

	// Stats computes dashboard aggregates; overdue is relative to now.
	Stats(ctx context.Context, now time.Time) (ProjectStats, error)
}

// TaskRepository defines operations for project tasks and their comments.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	// Delete hard-deletes the task; comments cascade.
	Delete(ctx context.Context, id string) error
	ListByProject(ctx context.Context, projectID string) ([]*models.Task, error)
	ListByResponsible(ctx context.Context, userID string) ([]*models.Task, error)
	CountByStatus(ctx context.Context, status models.TaskStatus) (int64, error)

	AddComment(ctx context.Context, comment *models.TaskComment) error
	ListComments(ctx context.Context, taskID string) ([]*models.TaskComment, error)
}

// ReviewerLoad is the per-reviewer approval flow tally for the dashboard.
type ReviewerLoad struct {
	ReviewerID   string `json:"reviewer_id"`
	ReviewerName string `json:"reviewer_name"`
	Decided      int64  `json:"decided"`
	Pending      int64  `json:"pending"`
}

// ApprovalRepository defines operations for approval flows.
type ApprovalRepository interface {
	Create(ctx context.Context, flow *models.ApprovalFlow) error
	GetByID(ctx context.Context, id string) (*models.ApprovalFlow, error)
	ListByReviewer(ctx context.Context, reviewerID string) ([]*models.ApprovalFlow, error)
	ExistsForTask(ctx context.Context, taskID string) (bool, error)

	// Decide atomically moves a pending flow to the given terminal outcome,
	// stamps reviewedAt, and inserts the notification, all in one
	// transaction. A flow that is already decided (including one decided by
	// a concurrent caller) yields models.ErrInvalidTransition; a missing
	// flow yields models.ErrNotFound.
	Decide(ctx context.Context, flowID string, outcome models.ApprovalStatus, reviewedAt time.Time, note *models.Notification) error

	ReviewerLoads(ctx context.Context) ([]*ReviewerLoad, error)
}

// IncidentFilter narrows incident listings. Empty fields match everything.
type IncidentFilter struct {
	ProjectID  string
	ReporterID string
	Status     models.IncidentStatus
	Severity   models.Severity
}

// IncidentRepository defines operations for incident reports.
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id string) (*models.Incident, error)
	List(ctx context.Context, filter IncidentFilter) ([]*models.Incident, error)
	// UpdateTriage writes status, severity, responsible and closure
	// timestamp in one statement. closedAt must be nil unless status is
	// closed; the service layer derives it.
	UpdateTriage(ctx context.Context, id string, status models.IncidentStatus, severity models.Severity, responsibleID string, closedAt *time.Time) error
	Count(ctx context.Context) (int64, error)
}

// ChecklistRepository defines operations for checklist items and their
// per-day completion ledger.
type ChecklistRepository interface {
	CreateItem(ctx context.Context, item *models.ChecklistItem) error
	GetItem(ctx context.Context, id string) (*models.ChecklistItem, error)
	ListItems(ctx context.Context, projectID string, activeOnly bool) ([]*models.ChecklistItem, error)
	SetItemActive(ctx context.Context, id string, active bool) error

	// UpsertCompletion inserts or updates the single row keyed by
	// (item, user, date). Safe under concurrent writers.
	UpsertCompletion(ctx context.Context, completion *models.Completion) error
	// CompletionsFor maps item id to completed flag for one user and day.
	CompletionsFor(ctx context.Context, userID, date string) (map[string]bool, error)
	CountCompletions(ctx context.Context, itemID, userID, date string) (int64, error)
}

// NotificationRepository defines operations for per-recipient notices.
type NotificationRepository interface {
	Create(ctx context.Context, note *models.Notification) error
	// ListAndMarkRead returns the recipient's notifications newest-first
	// and flips every unread row to read in the same transaction.
	ListAndMarkRead(ctx context.Context, recipientID string) ([]*models.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}

// ProgressRepository defines operations for progress entries (avances).
type ProgressRepository interface {
	// CreateEntry inserts the entry and its photos in one transaction.
	CreateEntry(ctx context.Context, entry *models.ProgressEntry, photos []*models.ProgressPhoto) error
	ListByProject(ctx context.Context, projectID string) ([]*models.ProgressEntry, error)
	ListByProjectAndUser(ctx context.Context, projectID, userID string) ([]*models.ProgressEntry, error)
	ListPhotos(ctx context.Context, entryID string) ([]*models.ProgressPhoto, error)
}

// DocumentRepository defines operations for uploaded project documents.
type DocumentRepository interface {
	// Create inserts the document, assigning the next version number for
	// its (project, file name) pair.
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
	ListByProject(ctx context.Context, projectID string) ([]*models.Document, error)
}

// MessageRepository defines operations for contact messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context) ([]*models.ContactMessage, error)
	SetRead(ctx context.Context, id string, read bool) error
	Delete(ctx context.Context, id string) error
}
