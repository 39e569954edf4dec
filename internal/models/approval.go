package models

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus is the state of an approval flow. Flows start pending and
// transition exactly once to approved or rejected; decisions are terminal.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ParseApprovalOutcome converts a string to a terminal ApprovalStatus.
// Only approved and rejected are valid outcomes of a decision.
func ParseApprovalOutcome(s string) (ApprovalStatus, bool) {
	switch ApprovalStatus(s) {
	case ApprovalApproved, ApprovalRejected:
		return ApprovalStatus(s), true
	}
	return "", false
}

// ApprovalFlow is a reviewable decision record attached to a completed task.
// ReviewedAt is set exactly when the reviewer decides.
type ApprovalFlow struct {
	ID          string         `json:"id"`
	TaskID      string         `json:"task_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Status      ApprovalStatus `json:"status"`
	ReviewerID  string         `json:"reviewer_id"`
	ReviewedAt  *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewApprovalFlow creates a pending ApprovalFlow for the given task.
func NewApprovalFlow(taskID, name, description, reviewerID string) *ApprovalFlow {
	return &ApprovalFlow{
		ID:          uuid.New().String(),
		TaskID:      taskID,
		Name:        name,
		Description: description,
		Status:      ApprovalPending,
		ReviewerID:  reviewerID,
		CreatedAt:   time.Now(),
	}
}

// Decided reports whether the flow reached a terminal state.
func (f *ApprovalFlow) Decided() bool {
	return f.Status != ApprovalPending
}
