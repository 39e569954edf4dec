package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactMessage is a public contact-form message with a read toggle.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewContactMessage creates an unread ContactMessage.
func NewContactMessage(name, email, phone, company, message string) *ContactMessage {
	return &ContactMessage{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Company:   company,
		Message:   message,
		CreatedAt: time.Now(),
	}
}
