package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a project task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// ParseTaskStatus converts a string to a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(s) {
	case TaskPending, TaskInProgress, TaskCompleted:
		return TaskStatus(s), true
	}
	return "", false
}

// Task is a unit of work belonging to exactly one project, optionally
// assigned to a responsible user. Only the responsible user or an
// editor/admin on the project may change its status.
type Task struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"project_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Status        TaskStatus `json:"status"`
	ResponsibleID string     `json:"responsible_id,omitempty"` // empty = unassigned
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewTask creates a pending Task in the given project.
func NewTask(projectID, name, description string) *Task {
	now := time.Now()
	return &Task{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Name:        name,
		Description: description,
		StartDate:   now,
		Status:      TaskPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TaskComment is a free-text comment on a task. Comments are hard-deleted
// in cascade with the task.
type TaskComment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
