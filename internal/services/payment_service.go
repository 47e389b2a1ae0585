package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/clients"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
	natsclient "github.com/AdithaBuwaneka/fashion-mart-backend/internal/nats"
)

const intentSucceeded = "succeeded"

// PaymentStore is the persistence surface for payments
type PaymentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID) (bool, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	GetPaymentByIntent(ctx context.Context, intentID string) (*models.Payment, error)
	UpdatePayment(ctx context.Context, payment *models.Payment) error
}

// IntentProvider is the external payment provider
type IntentProvider interface {
	CreateIntent(ctx context.Context, amount float64, orderID string) (*clients.PaymentIntent, error)
	ConfirmIntent(ctx context.Context, intentID string) (*clients.PaymentIntent, error)
	GetIntent(ctx context.Context, intentID string) (*clients.PaymentIntent, error)
}

// ConfirmGuard is the Redis idempotency guard for payment settlement.
// Settlement stays correct without it; the database transition is the
// real gate.
type ConfirmGuard interface {
	AcquirePaymentConfirm(ctx context.Context, intentID string, ttl time.Duration) (bool, error)
	ReleasePaymentConfirm(ctx context.Context, intentID string) error
}

// PaymentService handles payment-intent creation and settlement
type PaymentService struct {
	orders        PaymentStore
	provider      IntentProvider
	guard         ConfirmGuard
	notifications Notifier
	events        *natsclient.Client
	logger        *logrus.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	orders PaymentStore,
	provider IntentProvider,
	guard ConfirmGuard,
	notifications Notifier,
	events *natsclient.Client,
	logger *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		orders:        orders,
		provider:      provider,
		guard:         guard,
		notifications: notifications,
		events:        events,
		logger:        logger,
	}
}

// CreateIntent creates (or returns) the payment intent for an order. One
// intent per order: a repeat call re-fetches the existing intent instead
// of creating a second charge.
func (s *PaymentService) CreateIntent(ctx context.Context, customerID string, orderID uuid.UUID) (*clients.PaymentIntent, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("order", orderID.String())
		}
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, NewForbiddenError("order belongs to another customer")
	}
	if order.PaymentStatus != models.PaymentPending {
		return nil, NewInvalidStateError("create payment intent", string(order.PaymentStatus), string(models.PaymentPending))
	}

	if payment, err := s.orders.GetPaymentByOrder(ctx, orderID); err == nil {
		intent, err := s.provider.GetIntent(ctx, payment.PaymentIntentID)
		if err != nil {
			return nil, NewUpstreamError("stripe", "failed to load existing payment intent", err)
		}
		return intent, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	intent, err := s.provider.CreateIntent(ctx, order.TotalAmount, orderID.String())
	if err != nil {
		return nil, NewUpstreamError("stripe", "failed to create payment intent", err)
	}

	payment := &models.Payment{
		OrderID:         orderID,
		CustomerID:      customerID,
		PaymentIntentID: intent.ID,
		Amount:          order.TotalAmount,
		Currency:        intent.Currency,
		Status:          models.PaymentIntentPending,
	}
	if err := s.orders.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":  orderID,
		"intent_id": intent.ID,
		"amount":    order.TotalAmount,
	}).Info("Payment intent created")
	return intent, nil
}

// Confirm confirms the order's payment with the provider and settles the
// order. Safe to retry: settlement is idempotent per intent.
func (s *PaymentService) Confirm(ctx context.Context, customerID string, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("order", orderID.String())
		}
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, NewForbiddenError("order belongs to another customer")
	}

	payment, err := s.orders.GetPaymentByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewInvalidStateError("confirm payment", "no intent", "intent created")
		}
		return nil, err
	}

	intent, err := s.provider.ConfirmIntent(ctx, payment.PaymentIntentID)
	if err != nil {
		return nil, NewUpstreamError("stripe", "payment confirmation failed", err)
	}
	if intent.Status != intentSucceeded {
		return nil, NewUpstreamError("stripe", fmt.Sprintf("payment intent is %s", intent.Status), nil)
	}

	if err := s.settle(ctx, payment); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, orderID)
}

// HandleWebhook settles an order from a provider webhook event. Unknown
// intents are ignored so the provider stops retrying.
func (s *PaymentService) HandleWebhook(ctx context.Context, eventType, intentID string) error {
	if eventType != "payment_intent.succeeded" {
		s.logger.WithField("event_type", eventType).Debug("Ignoring payment webhook event")
		return nil
	}

	payment, err := s.orders.GetPaymentByIntent(ctx, intentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithField("intent_id", intentID).Warn("Webhook for unknown payment intent")
			return nil
		}
		return err
	}
	return s.settle(ctx, payment)
}

// settle moves the order to (processing, paid) exactly once per intent.
// Redis takes the fast path; the status-guarded database update is the
// authoritative gate when Redis is down or absent.
func (s *PaymentService) settle(ctx context.Context, payment *models.Payment) error {
	if s.guard != nil {
		first, err := s.guard.AcquirePaymentConfirm(ctx, payment.PaymentIntentID, 24*time.Hour)
		if err != nil {
			s.logger.WithError(err).Warn("Payment confirm guard unavailable, relying on database transition")
		} else if !first {
			return nil
		}
	}

	moved, err := s.orders.MarkPaid(ctx, payment.OrderID)
	if err != nil {
		if s.guard != nil {
			if relErr := s.guard.ReleasePaymentConfirm(ctx, payment.PaymentIntentID); relErr != nil {
				s.logger.WithError(relErr).Warn("Failed to release payment confirm guard")
			}
		}
		return err
	}
	if !moved {
		return nil
	}

	payment.Status = models.PaymentIntentSucceeded
	if err := s.orders.UpdatePayment(ctx, payment); err != nil {
		s.logger.WithError(err).WithField("order_id", payment.OrderID).Warn("Failed to update payment row after settlement")
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":  payment.OrderID,
		"intent_id": payment.PaymentIntentID,
	}).Info("Order paid")

	s.notifications.Notify(ctx, payment.CustomerID, models.NotificationPaymentUpdate,
		"Payment received",
		fmt.Sprintf("Payment for order %s was received", payment.OrderID))

	s.events.Publish(natsclient.SubjectOrderPaid, natsclient.OrderEvent{
		EventType:   natsclient.SubjectOrderPaid,
		OrderID:     payment.OrderID.String(),
		CustomerID:  payment.CustomerID,
		Status:      string(models.OrderProcessing),
		TotalAmount: payment.Amount,
		Timestamp:   now(),
	})
	return nil
}
