package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
	natsclient "github.com/AdithaBuwaneka/fashion-mart-backend/internal/nats"
)

// DesignStore is the persistence surface for the design workflow
type DesignStore interface {
	Create(ctx context.Context, design *models.Design) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Design, error)
	ListByDesigner(ctx context.Context, designerID string) ([]models.Design, error)
	ListByStatus(ctx context.Context, status models.DesignStatus) ([]models.Design, error)
	Update(ctx context.Context, design *models.Design) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DesignService handles the draft -> pending -> approved/rejected lifecycle
type DesignService struct {
	designs       DesignStore
	categories    CategoryStore
	users         RoleLister
	notifications Notifier
	events        *natsclient.Client
	logger        *logrus.Logger
}

// NewDesignService creates a new design service
func NewDesignService(
	designs DesignStore,
	categories CategoryStore,
	users RoleLister,
	notifications Notifier,
	events *natsclient.Client,
	logger *logrus.Logger,
) *DesignService {
	return &DesignService{
		designs:       designs,
		categories:    categories,
		users:         users,
		notifications: notifications,
		events:        events,
		logger:        logger,
	}
}

// DesignInput carries design create/update fields
type DesignInput struct {
	Name        string
	Description string
	CategoryID  uuid.UUID
	ImageURL    string
}

// CreateDraft creates a new design in draft state
func (s *DesignService) CreateDraft(ctx context.Context, designerID string, input DesignInput) (*models.Design, error) {
	if input.Name == "" {
		return nil, NewValidationError("name", "name is required")
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("category", input.CategoryID.String())
		}
		return nil, err
	}

	design := &models.Design{
		DesignerID:  designerID,
		CategoryID:  input.CategoryID,
		Name:        input.Name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Status:      models.DesignDraft,
	}
	if err := s.designs.Create(ctx, design); err != nil {
		return nil, err
	}
	return design, nil
}

// ListMine returns all of a designer's designs, newest first
func (s *DesignService) ListMine(ctx context.Context, designerID string) ([]models.Design, error) {
	return s.designs.ListByDesigner(ctx, designerID)
}

// GetMine returns one of the designer's own designs
func (s *DesignService) GetMine(ctx context.Context, designerID string, id uuid.UUID) (*models.Design, error) {
	design, err := s.getOwned(ctx, designerID, id)
	if err != nil {
		return nil, err
	}
	return design, nil
}

// UpdateDraft edits a design. Only drafts are editable; anything already
// submitted is frozen for review.
func (s *DesignService) UpdateDraft(ctx context.Context, designerID string, id uuid.UUID, input DesignInput) (*models.Design, error) {
	design, err := s.getOwned(ctx, designerID, id)
	if err != nil {
		return nil, err
	}
	if design.Status != models.DesignDraft {
		return nil, NewInvalidStateError("edit design", string(design.Status), string(models.DesignDraft))
	}

	if input.Name != "" {
		design.Name = input.Name
	}
	if input.Description != "" {
		design.Description = input.Description
	}
	if input.ImageURL != "" {
		design.ImageURL = input.ImageURL
	}
	if input.CategoryID != uuid.Nil && input.CategoryID != design.CategoryID {
		if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewNotFoundError("category", input.CategoryID.String())
			}
			return nil, err
		}
		design.CategoryID = input.CategoryID
	}

	if err := s.designs.Update(ctx, design); err != nil {
		return nil, err
	}
	return design, nil
}

// DeleteDraft removes a draft design
func (s *DesignService) DeleteDraft(ctx context.Context, designerID string, id uuid.UUID) error {
	design, err := s.getOwned(ctx, designerID, id)
	if err != nil {
		return err
	}
	if design.Status != models.DesignDraft {
		return NewInvalidStateError("delete design", string(design.Status), string(models.DesignDraft))
	}
	return s.designs.Delete(ctx, id)
}

// Submit moves a draft into the review queue
func (s *DesignService) Submit(ctx context.Context, designerID string, id uuid.UUID) (*models.Design, error) {
	design, err := s.getOwned(ctx, designerID, id)
	if err != nil {
		return nil, err
	}
	if design.Status != models.DesignDraft {
		return nil, NewInvalidStateError("submit design", string(design.Status), string(models.DesignDraft))
	}
	if design.ImageURL == "" {
		return nil, NewValidationError("image", "an image is required before submission")
	}

	design.Status = models.DesignPending
	design.RejectionReason = ""
	if err := s.designs.Update(ctx, design); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"design_id":   design.ID,
		"designer_id": designerID,
	}).Info("Design submitted for review")

	if reviewers, err := s.users.ListByRole(ctx, models.RoleInventoryManager); err != nil {
		s.logger.WithError(err).Warn("Failed to list reviewers for submission notice")
	} else {
		ids := make([]string, 0, len(reviewers))
		for _, u := range reviewers {
			ids = append(ids, u.ID)
		}
		s.notifications.NotifyAll(ctx, ids, models.NotificationDesignSubmitted,
			"Design awaiting review",
			fmt.Sprintf("%q was submitted for review", design.Name))
	}

	s.events.Publish(natsclient.SubjectDesignSubmitted, natsclient.DesignEvent{
		EventType:  natsclient.SubjectDesignSubmitted,
		DesignID:   design.ID.String(),
		DesignerID: designerID,
		Status:     string(design.Status),
		Timestamp:  now(),
	})
	return design, nil
}

// ListPending returns the review queue
func (s *DesignService) ListPending(ctx context.Context) ([]models.Design, error) {
	return s.designs.ListByStatus(ctx, models.DesignPending)
}

// Review approves or rejects a pending design. Rejection requires a reason
// so the designer knows what to fix.
func (s *DesignService) Review(ctx context.Context, reviewerID string, id uuid.UUID, approve bool, reason string) (*models.Design, error) {
	design, err := s.designs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("design", id.String())
		}
		return nil, err
	}
	if design.Status != models.DesignPending {
		return nil, NewInvalidStateError("review design", string(design.Status), string(models.DesignPending))
	}

	var subject, body string
	if approve {
		design.Status = models.DesignApproved
		approvedAt := time.Now().UTC()
		design.ApprovedAt = &approvedAt
		design.RejectionReason = ""
		subject = "Design approved"
		body = fmt.Sprintf("%q was approved and can now become a product", design.Name)
	} else {
		if reason == "" {
			return nil, NewValidationError("reason", "a rejection reason is required")
		}
		design.Status = models.DesignRejected
		design.RejectionReason = reason
		subject = "Design rejected"
		body = fmt.Sprintf("%q was rejected: %s", design.Name, reason)
	}

	if err := s.designs.Update(ctx, design); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"design_id":   design.ID,
		"reviewer_id": reviewerID,
		"status":      design.Status,
	}).Info("Design reviewed")

	s.notifications.Notify(ctx, design.DesignerID, models.NotificationDesignReviewed, subject, body)

	s.events.Publish(natsclient.SubjectDesignReviewed, natsclient.DesignEvent{
		EventType:  natsclient.SubjectDesignReviewed,
		DesignID:   design.ID.String(),
		DesignerID: design.DesignerID,
		Status:     string(design.Status),
		Timestamp:  now(),
	})
	return design, nil
}

func (s *DesignService) getOwned(ctx context.Context, designerID string, id uuid.UUID) (*models.Design, error) {
	design, err := s.designs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("design", id.String())
		}
		return nil, err
	}
	if design.DesignerID != designerID {
		return nil, NewForbiddenError("design belongs to another designer")
	}
	return design, nil
}
