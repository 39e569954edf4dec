package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectSuspended ProjectStatus = "suspended"
	ProjectFinished  ProjectStatus = "finished"
)

// ParseProjectStatus converts a string to a ProjectStatus.
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	switch ProjectStatus(s) {
	case ProjectActive, ProjectSuspended, ProjectFinished:
		return ProjectStatus(s), true
	}
	return "", false
}

// Project is a construction/engineering project. The creator is the implicit
// project admin. Archiving is a soft-delete toggle; projects are never
// hard-deleted in normal flow.
type Project struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	StartDate    time.Time     `json:"start_date"`
	EndDate      *time.Time    `json:"end_date,omitempty"`
	Progress     int           `json:"progress"` // percentage, 0..100
	Status       ProjectStatus `json:"status"`
	Archived     bool          `json:"archived"`
	AdminComment string        `json:"admin_comment,omitempty"`
	Budget       *float64      `json:"budget,omitempty"`
	BudgetFile   string        `json:"budget_file,omitempty"`   // blob store path
	ScheduleFile string        `json:"schedule_file,omitempty"` // blob store path
	CreatorID    string        `json:"creator_id"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewProject creates a Project owned by the given creator.
func NewProject(name, description, creatorID string) *Project {
	now := time.Now()
	return &Project{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		StartDate:   now,
		Status:      ProjectActive,
		CreatorID:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Overdue reports whether the project passed its end date without being
// finished, relative to the given instant.
func (p *Project) Overdue(now time.Time) bool {
	return p.EndDate != nil && p.EndDate.Before(now) && p.Status != ProjectFinished
}

// RoleBinding grants a user a role scoped to one project. A user holds at
// most one role per project; binding again replaces the previous role.
type RoleBinding struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	Role      Role   `json:"role"`
}

// ProjectMember is a read-side view of a binding joined with user identity.
type ProjectMember struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}
