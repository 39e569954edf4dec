// Package notify exposes the notification sink: lifecycle events append
// notices per recipient, and fetching a recipient's list marks every unread
// notice read in the same transaction.
package notify

import (
	"context"

	"github.com/obra-coop/obranet/internal/metrics"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

// Service coordinates notification operations.
type Service struct {
	store storage.Storage
}

// NewService creates a notification Service.
func NewService(store storage.Storage) *Service {
	return &Service{store: store}
}

// Send appends an unread notification for the recipient.
func (s *Service) Send(ctx context.Context, recipientID, title, message string) (*models.Notification, error) {
	note := models.NewNotification(recipientID, title, message)
	if err := s.store.Notifications().Create(ctx, note); err != nil {
		return nil, err
	}
	metrics.NotificationsCreated.Inc()
	return note, nil
}

// ListMine returns the actor's notifications newest-first. The returned
// read flags reflect the state before this fetch; every unread notice is
// marked read atomically with the read, so a second fetch shows all read.
func (s *Service) ListMine(ctx context.Context, actor *models.User) ([]*models.Notification, error) {
	return s.store.Notifications().ListAndMarkRead(ctx, actor.ID)
}

// UnreadCount returns the actor's unread notification count without
// touching read state.
func (s *Service) UnreadCount(ctx context.Context, actor *models.User) (int64, error) {
	return s.store.Notifications().CountUnread(ctx, actor.ID)
}
