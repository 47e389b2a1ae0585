package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
	natsclient "github.com/AdithaBuwaneka/fashion-mart-backend/internal/nats"
)

// UserRepository is the persistence surface for user management
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, role string, active *bool, page, limit int) ([]models.User, int64, error)
}

// UserService handles profile and admin user management
type UserService struct {
	users         UserRepository
	notifications Notifier
	events        *natsclient.Client
	logger        *logrus.Logger
}

// NewUserService creates a new user service
func NewUserService(users UserRepository, notifications Notifier, events *natsclient.Client, logger *logrus.Logger) *UserService {
	return &UserService{
		users:         users,
		notifications: notifications,
		events:        events,
		logger:        logger,
	}
}

// GetProfile loads a user record
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user", userID)
		}
		return nil, err
	}
	return user, nil
}

// ProfileUpdate carries the self-service profile fields
type ProfileUpdate struct {
	FirstName   string
	LastName    string
	PhoneNumber string
}

// UpdateProfile applies self-service profile changes
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.FirstName != "" {
		user.FirstName = update.FirstName
	}
	if update.LastName != "" {
		user.LastName = update.LastName
	}
	if update.PhoneNumber != "" {
		user.PhoneNumber = update.PhoneNumber
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetProfileImage stores the uploaded profile image URL
func (s *UserService) SetProfileImage(ctx context.Context, userID, imageURL string) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.ProfileImage = imageURL
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns users for the admin console
func (s *UserService) ListUsers(ctx context.Context, role string, active *bool, page, limit int) ([]models.User, int64, error) {
	if role != "" && !models.ValidRole(role) {
		return nil, 0, NewValidationError("role", "unknown role "+role)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.users.List(ctx, role, active, page, limit)
}

// UpdateRole mutates a user's role. Admin-only at the route layer; the
// change is logged with the acting admin for auditability and the affected
// user is notified.
func (s *UserService) UpdateRole(ctx context.Context, adminID, userID, newRole string) (*models.User, error) {
	if !models.ValidRole(newRole) {
		return nil, NewValidationError("role", "unknown role "+newRole)
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldRole := user.Role
	if oldRole == models.Role(newRole) {
		return user, nil
	}

	user.Role = models.Role(newRole)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"old_role": oldRole,
		"new_role": newRole,
		"admin_id": adminID,
	}).Info("User role changed")

	s.notifications.Notify(ctx, userID, models.NotificationRoleChanged,
		"Role updated",
		fmt.Sprintf("Your account role is now %s", newRole))

	s.events.Publish(natsclient.SubjectUserRoleChanged, natsclient.UserEvent{
		EventType: natsclient.SubjectUserRoleChanged,
		UserID:    userID,
		OldRole:   string(oldRole),
		NewRole:   newRole,
		ChangedBy: adminID,
		Timestamp: now(),
	})

	return user, nil
}

// SetActive activates or deactivates an account
func (s *UserService) SetActive(ctx context.Context, userID string, active bool) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Active = active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
