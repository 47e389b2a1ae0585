package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/clients"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
)

func newPaymentService(orders *mockPaymentStore, provider *mockIntentProvider, guard ConfirmGuard, notifier *recordingNotifier) *PaymentService {
	return NewPaymentService(orders, provider, guard, notifier, nil, testLogger())
}

func TestCreateIntentCreatesOncePerOrder(t *testing.T) {
	orders := new(mockPaymentStore)
	provider := new(mockIntentProvider)
	svc := newPaymentService(orders, provider, nil, &recordingNotifier{})

	orderID := uuid.New()
	orders.On("GetByID", mock.Anything, orderID).Return(&models.Order{
		ID:            orderID,
		CustomerID:    "customer-1",
		PaymentStatus: models.PaymentPending,
		TotalAmount:   120,
	}, nil)
	orders.On("GetPaymentByOrder", mock.Anything, orderID).Return(nil, gorm.ErrRecordNotFound)
	provider.On("CreateIntent", mock.Anything, 120.0, orderID.String()).Return(&clients.PaymentIntent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret",
		Amount:       12000,
		Currency:     "usd",
		Status:       "requires_payment_method",
	}, nil)
	orders.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
		return p.PaymentIntentID == "pi_123" && p.OrderID == orderID
	})).Return(nil)

	intent, err := svc.CreateIntent(context.Background(), "customer-1", orderID)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	orders.AssertExpectations(t)
}

func TestCreateIntentReturnsExistingIntent(t *testing.T) {
	orders := new(mockPaymentStore)
	provider := new(mockIntentProvider)
	svc := newPaymentService(orders, provider, nil, &recordingNotifier{})

	orderID := uuid.New()
	orders.On("GetByID", mock.Anything, orderID).Return(&models.Order{
		ID:            orderID,
		CustomerID:    "customer-1",
		PaymentStatus: models.PaymentPending,
	}, nil)
	orders.On("GetPaymentByOrder", mock.Anything, orderID).Return(&models.Payment{
		OrderID:         orderID,
		PaymentIntentID: "pi_123",
	}, nil)
	provider.On("GetIntent", mock.Anything, "pi_123").Return(&clients.PaymentIntent{ID: "pi_123"}, nil)

	intent, err := svc.CreateIntent(context.Background(), "customer-1", orderID)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	provider.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateIntentRejectsPaidOrder(t *testing.T) {
	orders := new(mockPaymentStore)
	svc := newPaymentService(orders, new(mockIntentProvider), nil, &recordingNotifier{})

	orderID := uuid.New()
	orders.On("GetByID", mock.Anything, orderID).Return(&models.Order{
		ID:            orderID,
		CustomerID:    "customer-1",
		PaymentStatus: models.PaymentPaid,
	}, nil)

	_, err := svc.CreateIntent(context.Background(), "customer-1", orderID)
	_, ok := IsInvalidStateError(err)
	assert.True(t, ok, "expected invalid state error, got %v", err)
}

func TestConfirmSettlesOrder(t *testing.T) {
	orders := new(mockPaymentStore)
	provider := new(mockIntentProvider)
	notifier := &recordingNotifier{}
	svc := newPaymentService(orders, provider, nil, notifier)

	orderID := uuid.New()
	order := &models.Order{
		ID:            orderID,
		CustomerID:    "customer-1",
		PaymentStatus: models.PaymentPending,
	}
	orders.On("GetByID", mock.Anything, orderID).Return(order, nil)
	orders.On("GetPaymentByOrder", mock.Anything, orderID).Return(&models.Payment{
		OrderID:         orderID,
		CustomerID:      "customer-1",
		PaymentIntentID: "pi_123",
	}, nil)
	provider.On("ConfirmIntent", mock.Anything, "pi_123").Return(&clients.PaymentIntent{
		ID:     "pi_123",
		Status: "succeeded",
	}, nil)
	orders.On("MarkPaid", mock.Anything, orderID).Return(true, nil)
	orders.On("UpdatePayment", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
		return p.Status == models.PaymentIntentSucceeded
	})).Return(nil)

	_, err := svc.Confirm(context.Background(), "customer-1", orderID)
	require.NoError(t, err)
	assert.Equal(t, []string{"customer-1"}, notifier.notified)
}

func TestConfirmFailsWhenProviderDeclines(t *testing.T) {
	orders := new(mockPaymentStore)
	provider := new(mockIntentProvider)
	svc := newPaymentService(orders, provider, nil, &recordingNotifier{})

	orderID := uuid.New()
	orders.On("GetByID", mock.Anything, orderID).Return(&models.Order{
		ID:         orderID,
		CustomerID: "customer-1",
	}, nil)
	orders.On("GetPaymentByOrder", mock.Anything, orderID).Return(&models.Payment{
		OrderID:         orderID,
		PaymentIntentID: "pi_123",
	}, nil)
	provider.On("ConfirmIntent", mock.Anything, "pi_123").Return(&clients.PaymentIntent{
		ID:     "pi_123",
		Status: "requires_payment_method",
	}, nil)

	_, err := svc.Confirm(context.Background(), "customer-1", orderID)
	_, ok := IsUpstreamError(err)
	assert.True(t, ok, "expected upstream error, got %v", err)
	orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
}

func TestWebhookSettlementIsIdempotent(t *testing.T) {
	orders := new(mockPaymentStore)
	notifier := &recordingNotifier{}
	svc := newPaymentService(orders, new(mockIntentProvider), nil, notifier)

	orderID := uuid.New()
	payment := &models.Payment{
		OrderID:         orderID,
		CustomerID:      "customer-1",
		PaymentIntentID: "pi_123",
	}
	orders.On("GetPaymentByIntent", mock.Anything, "pi_123").Return(payment, nil)
	orders.On("MarkPaid", mock.Anything, orderID).Return(true, nil).Once()
	orders.On("MarkPaid", mock.Anything, orderID).Return(false, nil)
	orders.On("UpdatePayment", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), "payment_intent.succeeded", "pi_123"))
	require.NoError(t, svc.HandleWebhook(context.Background(), "payment_intent.succeeded", "pi_123"))

	// Only the first settlement notifies the customer
	assert.Equal(t, []string{"customer-1"}, notifier.notified)
}

func TestWebhookGuardShortCircuitsReplay(t *testing.T) {
	orders := new(mockPaymentStore)
	guard := new(mockConfirmGuard)
	svc := newPaymentService(orders, new(mockIntentProvider), guard, &recordingNotifier{})

	orderID := uuid.New()
	orders.On("GetPaymentByIntent", mock.Anything, "pi_123").Return(&models.Payment{
		OrderID:         orderID,
		PaymentIntentID: "pi_123",
	}, nil)
	guard.On("AcquirePaymentConfirm", mock.Anything, "pi_123", mock.Anything).Return(false, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), "payment_intent.succeeded", "pi_123"))
	orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
}

func TestWebhookIgnoresUnknownIntent(t *testing.T) {
	orders := new(mockPaymentStore)
	svc := newPaymentService(orders, new(mockIntentProvider), nil, &recordingNotifier{})

	orders.On("GetPaymentByIntent", mock.Anything, "pi_unknown").Return(nil, gorm.ErrRecordNotFound)

	assert.NoError(t, svc.HandleWebhook(context.Background(), "payment_intent.succeeded", "pi_unknown"))
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	orders := new(mockPaymentStore)
	svc := newPaymentService(orders, new(mockIntentProvider), nil, &recordingNotifier{})

	assert.NoError(t, svc.HandleWebhook(context.Background(), "payment_intent.created", "pi_123"))
	orders.AssertNotCalled(t, "GetPaymentByIntent", mock.Anything, mock.Anything)
}
