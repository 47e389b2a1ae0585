package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
	natsclient "github.com/AdithaBuwaneka/fashion-mart-backend/internal/nats"
)

// ReturnStore is the persistence surface for returns
type ReturnStore interface {
	Create(ctx context.Context, ret *models.Return) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Return, error)
	ExistsForItem(ctx context.Context, orderItemID uuid.UUID) (bool, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Return, error)
	ListUnassigned(ctx context.Context) ([]models.Return, error)
	ListByStaff(ctx context.Context, staffID string) ([]models.Return, error)
	Update(ctx context.Context, ret *models.Return) error
}

// OrderItemReader resolves orders and items for return validation
type OrderItemReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error)
}

// ReturnService handles the return request and processing workflow
type ReturnService struct {
	returns       ReturnStore
	orders        OrderItemReader
	notifications Notifier
	events        *natsclient.Client
	logger        *logrus.Logger
}

// NewReturnService creates a new return service
func NewReturnService(
	returns ReturnStore,
	orders OrderItemReader,
	notifications Notifier,
	events *natsclient.Client,
	logger *logrus.Logger,
) *ReturnService {
	return &ReturnService{
		returns:       returns,
		orders:        orders,
		notifications: notifications,
		events:        events,
		logger:        logger,
	}
}

// ReturnInput carries a return request
type ReturnInput struct {
	OrderItemID uuid.UUID
	Reason      string
	ImageURL    string
}

// Request files a return against a delivered order item. One return per
// item, ever.
func (s *ReturnService) Request(ctx context.Context, customerID string, input ReturnInput) (*models.Return, error) {
	if input.Reason == "" {
		return nil, NewValidationError("reason", "a reason is required")
	}

	item, err := s.orders.GetItem(ctx, input.OrderItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("order item", input.OrderItemID.String())
		}
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, item.OrderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, NewForbiddenError("order belongs to another customer")
	}
	if order.Status != models.OrderDelivered {
		return nil, NewInvalidStateError("request return", string(order.Status), string(models.OrderDelivered))
	}

	exists, err := s.returns.ExistsForItem(ctx, input.OrderItemID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewConflictError("return", "a return already exists for this item")
	}

	ret := &models.Return{
		OrderID:     order.ID,
		OrderItemID: input.OrderItemID,
		CustomerID:  customerID,
		Reason:      input.Reason,
		ImageURL:    input.ImageURL,
		Status:      models.ReturnPending,
	}
	if err := s.returns.Create(ctx, ret); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"return_id":   ret.ID,
		"order_id":    order.ID,
		"customer_id": customerID,
	}).Info("Return requested")

	s.events.Publish(natsclient.SubjectReturnRequested, natsclient.ReturnEvent{
		EventType:  natsclient.SubjectReturnRequested,
		ReturnID:   ret.ID.String(),
		OrderID:    order.ID.String(),
		CustomerID: customerID,
		Status:     string(ret.Status),
		Timestamp:  now(),
	})
	return ret, nil
}

// ListMine returns the customer's return requests
func (s *ReturnService) ListMine(ctx context.Context, customerID string) ([]models.Return, error) {
	return s.returns.ListByCustomer(ctx, customerID)
}

// ListUnassigned returns pending returns with no staff yet
func (s *ReturnService) ListUnassigned(ctx context.Context) ([]models.Return, error) {
	return s.returns.ListUnassigned(ctx)
}

// ListAssigned returns the returns assigned to a staff member
func (s *ReturnService) ListAssigned(ctx context.Context, staffID string) ([]models.Return, error) {
	return s.returns.ListByStaff(ctx, staffID)
}

// Assign claims a pending return for a staff member
func (s *ReturnService) Assign(ctx context.Context, staffID string, id uuid.UUID) (*models.Return, error) {
	ret, err := s.getReturn(ctx, id)
	if err != nil {
		return nil, err
	}
	if ret.Status != models.ReturnPending {
		return nil, NewInvalidStateError("assign return", string(ret.Status), string(models.ReturnPending))
	}
	if ret.StaffID != nil {
		return nil, NewConflictError("return", "return is already assigned")
	}

	ret.StaffID = &staffID
	if err := s.returns.Update(ctx, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Process approves or rejects an assigned return. Refunds are settled
// offline; approving does not restock the item.
func (s *ReturnService) Process(ctx context.Context, staffID string, id uuid.UUID, approve bool, notes string) (*models.Return, error) {
	ret, err := s.getReturn(ctx, id)
	if err != nil {
		return nil, err
	}
	if ret.StaffID == nil || *ret.StaffID != staffID {
		return nil, NewForbiddenError("return is not assigned to you")
	}
	if ret.Status != models.ReturnPending {
		return nil, NewInvalidStateError("process return", string(ret.Status), string(models.ReturnPending))
	}

	var subject, body string
	if approve {
		ret.Status = models.ReturnApproved
		subject = "Return approved"
		body = fmt.Sprintf("Your return for order %s was approved", ret.OrderID)
	} else {
		if notes == "" {
			return nil, NewValidationError("notes", "rejection notes are required")
		}
		ret.Status = models.ReturnRejected
		subject = "Return rejected"
		body = fmt.Sprintf("Your return for order %s was rejected: %s", ret.OrderID, notes)
	}
	ret.Notes = notes

	if err := s.returns.Update(ctx, ret); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"return_id": ret.ID,
		"staff_id":  staffID,
		"status":    ret.Status,
	}).Info("Return processed")

	s.notifications.Notify(ctx, ret.CustomerID, models.NotificationReturnUpdate, subject, body)

	s.events.Publish(natsclient.SubjectReturnProcessed, natsclient.ReturnEvent{
		EventType:  natsclient.SubjectReturnProcessed,
		ReturnID:   ret.ID.String(),
		OrderID:    ret.OrderID.String(),
		CustomerID: ret.CustomerID,
		Status:     string(ret.Status),
		Timestamp:  now(),
	})
	return ret, nil
}

func (s *ReturnService) getReturn(ctx context.Context, id uuid.UUID) (*models.Return, error) {
	ret, err := s.returns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("return", id.String())
		}
		return nil, err
	}
	return ret, nil
}
