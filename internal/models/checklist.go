package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used for checklist completions.
const DateLayout = "2006-01-02"

// ChecklistItem is a recurring daily checklist entry for a project. Items
// are soft-disabled (Active=false), never removed, once completions
// reference them.
type ChecklistItem struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Text      string `json:"text"`
	Active    bool   `json:"active"`
}

// NewChecklistItem creates an active ChecklistItem.
func NewChecklistItem(projectID, text string) *ChecklistItem {
	return &ChecklistItem{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Text:      text,
		Active:    true,
	}
}

// Completion records whether a user completed one checklist item on one
// calendar date. At most one row exists per (item, user, date).
type Completion struct {
	ID        string `json:"id"`
	ItemID    string `json:"item_id"`
	UserID    string `json:"user_id"`
	Date      string `json:"date"` // DateLayout
	Completed bool   `json:"completed"`
}

// NewCompletion creates a Completion for the given day.
func NewCompletion(itemID, userID string, day time.Time, completed bool) *Completion {
	return &Completion{
		ID:        uuid.New().String(),
		ItemID:    itemID,
		UserID:    userID,
		Date:      day.Format(DateLayout),
		Completed: completed,
	}
}
