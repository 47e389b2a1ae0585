package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
)

func newReturnService(returns *mockReturnStore, orders *mockOrderItemReader, notifier *recordingNotifier) *ReturnService {
	return NewReturnService(returns, orders, notifier, nil, testLogger())
}

func deliveredOrderFixture(customerID string) (*models.Order, *models.OrderItem) {
	orderID := uuid.New()
	order := &models.Order{
		ID:         orderID,
		CustomerID: customerID,
		Status:     models.OrderDelivered,
	}
	item := &models.OrderItem{
		ID:      uuid.New(),
		OrderID: orderID,
	}
	return order, item
}

func TestRequestCreatesReturnForDeliveredItem(t *testing.T) {
	returns := new(mockReturnStore)
	orders := new(mockOrderItemReader)
	svc := newReturnService(returns, orders, &recordingNotifier{})

	order, item := deliveredOrderFixture("customer-1")
	orders.On("GetItem", mock.Anything, item.ID).Return(item, nil)
	orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	returns.On("ExistsForItem", mock.Anything, item.ID).Return(false, nil)
	returns.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Return) bool {
		return r.OrderItemID == item.ID && r.Status == models.ReturnPending
	})).Return(nil)

	ret, err := svc.Request(context.Background(), "customer-1", ReturnInput{
		OrderItemID: item.ID,
		Reason:      "wrong size",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReturnPending, ret.Status)
	returns.AssertExpectations(t)
}

func TestRequestRejectsUndeliveredOrder(t *testing.T) {
	for _, status := range []models.OrderStatus{models.OrderPending, models.OrderProcessing, models.OrderShipped, models.OrderCancelled} {
		returns := new(mockReturnStore)
		orders := new(mockOrderItemReader)
		svc := newReturnService(returns, orders, &recordingNotifier{})

		order, item := deliveredOrderFixture("customer-1")
		order.Status = status
		orders.On("GetItem", mock.Anything, item.ID).Return(item, nil)
		orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)

		_, err := svc.Request(context.Background(), "customer-1", ReturnInput{
			OrderItemID: item.ID,
			Reason:      "wrong size",
		})
		_, ok := IsInvalidStateError(err)
		assert.True(t, ok, "status %s: expected invalid state error, got %v", status, err)
	}
}

func TestRequestRejectsSecondReturnForItem(t *testing.T) {
	returns := new(mockReturnStore)
	orders := new(mockOrderItemReader)
	svc := newReturnService(returns, orders, &recordingNotifier{})

	order, item := deliveredOrderFixture("customer-1")
	orders.On("GetItem", mock.Anything, item.ID).Return(item, nil)
	orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	returns.On("ExistsForItem", mock.Anything, item.ID).Return(true, nil)

	_, err := svc.Request(context.Background(), "customer-1", ReturnInput{
		OrderItemID: item.ID,
		Reason:      "wrong size",
	})
	_, ok := IsConflictError(err)
	assert.True(t, ok, "expected conflict error, got %v", err)
	returns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRequestRejectsForeignOrder(t *testing.T) {
	returns := new(mockReturnStore)
	orders := new(mockOrderItemReader)
	svc := newReturnService(returns, orders, &recordingNotifier{})

	order, item := deliveredOrderFixture("customer-1")
	orders.On("GetItem", mock.Anything, item.ID).Return(item, nil)
	orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.Request(context.Background(), "customer-2", ReturnInput{
		OrderItemID: item.ID,
		Reason:      "wrong size",
	})
	_, ok := IsForbiddenError(err)
	assert.True(t, ok, "expected forbidden error, got %v", err)
}

func TestRequestRequiresReason(t *testing.T) {
	svc := newReturnService(new(mockReturnStore), new(mockOrderItemReader), &recordingNotifier{})

	_, err := svc.Request(context.Background(), "customer-1", ReturnInput{OrderItemID: uuid.New()})
	_, ok := IsValidationError(err)
	assert.True(t, ok, "expected validation error, got %v", err)
}

func TestAssignClaimsPendingReturnOnce(t *testing.T) {
	returns := new(mockReturnStore)
	svc := newReturnService(returns, new(mockOrderItemReader), &recordingNotifier{})

	ret := &models.Return{ID: uuid.New(), Status: models.ReturnPending}
	returns.On("GetByID", mock.Anything, ret.ID).Return(ret, nil)
	returns.On("Update", mock.Anything, ret).Return(nil)

	claimed, err := svc.Assign(context.Background(), "staff-1", ret.ID)
	require.NoError(t, err)
	require.NotNil(t, claimed.StaffID)
	assert.Equal(t, "staff-1", *claimed.StaffID)

	_, err = svc.Assign(context.Background(), "staff-2", ret.ID)
	_, ok := IsConflictError(err)
	assert.True(t, ok, "expected conflict error, got %v", err)
}

func TestProcessApprovesAssignedReturn(t *testing.T) {
	returns := new(mockReturnStore)
	notifier := &recordingNotifier{}
	svc := newReturnService(returns, new(mockOrderItemReader), notifier)

	staffID := "staff-1"
	ret := &models.Return{
		ID:         uuid.New(),
		CustomerID: "customer-1",
		Status:     models.ReturnPending,
		StaffID:    &staffID,
	}
	returns.On("GetByID", mock.Anything, ret.ID).Return(ret, nil)
	returns.On("Update", mock.Anything, ret).Return(nil)

	processed, err := svc.Process(context.Background(), staffID, ret.ID, true, "verified damage")
	require.NoError(t, err)
	assert.Equal(t, models.ReturnApproved, processed.Status)
	assert.Equal(t, []string{"customer-1"}, notifier.notified)
}

func TestProcessRejectionRequiresNotes(t *testing.T) {
	returns := new(mockReturnStore)
	svc := newReturnService(returns, new(mockOrderItemReader), &recordingNotifier{})

	staffID := "staff-1"
	ret := &models.Return{ID: uuid.New(), Status: models.ReturnPending, StaffID: &staffID}
	returns.On("GetByID", mock.Anything, ret.ID).Return(ret, nil)

	_, err := svc.Process(context.Background(), staffID, ret.ID, false, "")
	_, ok := IsValidationError(err)
	assert.True(t, ok, "expected validation error, got %v", err)
	returns.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProcessRequiresAssignee(t *testing.T) {
	returns := new(mockReturnStore)
	svc := newReturnService(returns, new(mockOrderItemReader), &recordingNotifier{})

	staffID := "staff-1"
	ret := &models.Return{ID: uuid.New(), Status: models.ReturnPending, StaffID: &staffID}
	returns.On("GetByID", mock.Anything, ret.ID).Return(ret, nil)

	_, err := svc.Process(context.Background(), "staff-2", ret.ID, true, "")
	_, ok := IsForbiddenError(err)
	assert.True(t, ok, "expected forbidden error, got %v", err)

	unassigned := &models.Return{ID: uuid.New(), Status: models.ReturnPending}
	returns.On("GetByID", mock.Anything, unassigned.ID).Return(unassigned, nil)

	_, err = svc.Process(context.Background(), "staff-2", unassigned.ID, true, "")
	_, ok = IsForbiddenError(err)
	assert.True(t, ok, "expected forbidden error, got %v", err)
}

func TestProcessRejectsSettledReturn(t *testing.T) {
	returns := new(mockReturnStore)
	svc := newReturnService(returns, new(mockOrderItemReader), &recordingNotifier{})

	staffID := "staff-1"
	ret := &models.Return{ID: uuid.New(), Status: models.ReturnApproved, StaffID: &staffID}
	returns.On("GetByID", mock.Anything, ret.ID).Return(ret, nil)

	_, err := svc.Process(context.Background(), staffID, ret.ID, true, "")
	_, ok := IsInvalidStateError(err)
	assert.True(t, ok, "expected invalid state error, got %v", err)
}
