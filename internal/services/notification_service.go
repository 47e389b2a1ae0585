package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
)

func now() time.Time {
	return time.Now().UTC()
}

// Notifier delivers typed in-app messages. Notification failures never fail
// the operation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, userID string, typ models.NotificationType, title, message string)
	NotifyAll(ctx context.Context, userIDs []string, typ models.NotificationType, title, message string)
}

// NotificationRepository is the persistence surface for notifications
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// NotificationService handles in-app notifications
type NotificationService struct {
	repo   NotificationRepository
	logger *logrus.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo NotificationRepository, logger *logrus.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

// Notify writes a notification for one user
func (s *NotificationService) Notify(ctx context.Context, userID string, typ models.NotificationType, title, message string) {
	err := s.repo.Create(ctx, &models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	})
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to create notification")
	}
}

// NotifyAll writes the same notification for several users
func (s *NotificationService) NotifyAll(ctx context.Context, userIDs []string, typ models.NotificationType, title, message string) {
	if len(userIDs) == 0 {
		return
	}
	notifications := make([]models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		notifications = append(notifications, models.Notification{
			UserID:  id,
			Type:    typ,
			Title:   title,
			Message: message,
		})
	}
	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		s.logger.WithError(err).Warn("Failed to create notifications")
	}
}

// List returns a user's notifications
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly)
}

// MarkRead marks one of the user's notifications read
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("notification", id.String())
		}
		return err
	}
	return nil
}

// MarkAllRead marks all the user's notifications read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}
