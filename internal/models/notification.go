package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a per-recipient notice created by lifecycle transitions,
// primarily approval flow decisions. The read flag flips the first time the
// recipient's list is fetched (batch mark-as-read).
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewNotification creates an unread Notification.
func NewNotification(recipientID, title, message string) *Notification {
	return &Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		CreatedAt:   time.Now(),
	}
}
