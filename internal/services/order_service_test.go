package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/repository"
)

func newOrderService(orders *mockOrderStore, stocks *mockStockReader, conflicts *countingCounter, notifier *recordingNotifier) *OrderService {
	return NewOrderService(orders, stocks, noopAlerter{}, notifier, nil, conflicts, testLogger())
}

func TestCheckoutPricesItemsFromCatalog(t *testing.T) {
	orders := new(mockOrderStore)
	stocks := new(mockStockReader)
	notifier := &recordingNotifier{}
	svc := newOrderService(orders, stocks, &countingCounter{}, notifier)

	productID := uuid.New()
	stockID := uuid.New()
	stocks.On("GetStock", mock.Anything, stockID).Return(&models.Stock{
		ID:        stockID,
		ProductID: productID,
		Quantity:  10,
	}, nil)
	stocks.On("GetByID", mock.Anything, productID).Return(&models.Product{
		ID:     productID,
		Name:   "Summer Dress",
		Price:  49.90,
		Active: true,
	}, nil)
	orders.On("CreateWithItems", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	order, err := svc.Checkout(context.Background(), "customer-1", CheckoutInput{
		Items:           []CheckoutItem{{StockID: stockID, Quantity: 3}},
		ShippingAddress: models.JSONB{"city": "Colombo"},
	})
	require.NoError(t, err)
	assert.InDelta(t, 149.70, order.TotalAmount, 0.001)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, []string{"customer-1"}, notifier.notified)

	items := orders.Calls[0].Arguments.Get(2).([]models.OrderItem)
	require.Len(t, items, 1)
	assert.InDelta(t, 49.90, items[0].UnitPrice, 0.001)
}

func TestCheckoutRejectsInactiveProduct(t *testing.T) {
	orders := new(mockOrderStore)
	stocks := new(mockStockReader)
	svc := newOrderService(orders, stocks, &countingCounter{}, &recordingNotifier{})

	productID := uuid.New()
	stockID := uuid.New()
	stocks.On("GetStock", mock.Anything, stockID).Return(&models.Stock{ID: stockID, ProductID: productID}, nil)
	stocks.On("GetByID", mock.Anything, productID).Return(&models.Product{ID: productID, Active: false}, nil)

	_, err := svc.Checkout(context.Background(), "customer-1", CheckoutInput{
		Items: []CheckoutItem{{StockID: stockID, Quantity: 1}},
	})
	_, ok := IsValidationError(err)
	assert.True(t, ok, "expected validation error, got %v", err)
	orders.AssertNotCalled(t, "CreateWithItems", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	orders := new(mockOrderStore)
	stocks := new(mockStockReader)
	conflicts := &countingCounter{}
	svc := newOrderService(orders, stocks, conflicts, &recordingNotifier{})

	productID := uuid.New()
	stockID := uuid.New()
	stocks.On("GetStock", mock.Anything, stockID).Return(&models.Stock{
		ID:        stockID,
		ProductID: productID,
		Quantity:  1,
	}, nil)
	stocks.On("GetByID", mock.Anything, productID).Return(&models.Product{
		ID:     productID,
		Price:  10,
		Active: true,
	}, nil)
	orders.On("CreateWithItems", mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("stock %s: %w", stockID, repository.ErrInsufficientStock))

	_, err := svc.Checkout(context.Background(), "customer-1", CheckoutInput{
		Items: []CheckoutItem{{StockID: stockID, Quantity: 5}},
	})
	_, ok := IsValidationError(err)
	assert.True(t, ok, "expected validation error, got %v", err)
	assert.Equal(t, 1, conflicts.n)
}

func TestCheckoutRejectsDuplicateStockLines(t *testing.T) {
	svc := newOrderService(new(mockOrderStore), new(mockStockReader), &countingCounter{}, &recordingNotifier{})

	stockID := uuid.New()
	_, err := svc.Checkout(context.Background(), "customer-1", CheckoutInput{
		Items: []CheckoutItem{
			{StockID: stockID, Quantity: 1},
			{StockID: stockID, Quantity: 2},
		},
	})
	_, ok := IsValidationError(err)
	assert.True(t, ok, "expected validation error, got %v", err)
}

func TestAssignRequiresPaidProcessingOrder(t *testing.T) {
	cases := []struct {
		status  models.OrderStatus
		payment models.PaymentStatus
	}{
		{models.OrderPending, models.PaymentPending},
		{models.OrderPending, models.PaymentPaid},
		{models.OrderShipped, models.PaymentPaid},
		{models.OrderProcessing, models.PaymentPending},
	}
	for _, tc := range cases {
		orders := new(mockOrderStore)
		svc := newOrderService(orders, new(mockStockReader), &countingCounter{}, &recordingNotifier{})

		id := uuid.New()
		orders.On("GetByID", mock.Anything, id).Return(&models.Order{
			ID:            id,
			Status:        tc.status,
			PaymentStatus: tc.payment,
		}, nil)

		_, err := svc.Assign(context.Background(), "staff-1", id)
		_, ok := IsInvalidStateError(err)
		assert.True(t, ok, "%s/%s: expected invalid state error, got %v", tc.status, tc.payment, err)
	}
}

func TestAssignClaimsOrderOnce(t *testing.T) {
	orders := new(mockOrderStore)
	svc := newOrderService(orders, new(mockStockReader), &countingCounter{}, &recordingNotifier{})

	id := uuid.New()
	orders.On("GetByID", mock.Anything, id).Return(&models.Order{
		ID:            id,
		Status:        models.OrderProcessing,
		PaymentStatus: models.PaymentPaid,
	}, nil).Once()
	orders.On("Update", mock.Anything, mock.Anything).Return(nil)

	order, err := svc.Assign(context.Background(), "staff-1", id)
	require.NoError(t, err)
	require.NotNil(t, order.StaffID)
	assert.Equal(t, "staff-1", *order.StaffID)

	// Second claim sees the assigned order
	orders.On("GetByID", mock.Anything, id).Return(order, nil)
	_, err = svc.Assign(context.Background(), "staff-2", id)
	_, ok := IsConflictError(err)
	assert.True(t, ok, "expected conflict error, got %v", err)
}

func TestUpdateStatusMovesForwardOnly(t *testing.T) {
	staffID := "staff-1"

	cases := []struct {
		from   models.OrderStatus
		target models.OrderStatus
		valid  bool
	}{
		{models.OrderProcessing, models.OrderShipped, true},
		{models.OrderShipped, models.OrderDelivered, true},
		{models.OrderProcessing, models.OrderDelivered, false},
		{models.OrderShipped, models.OrderProcessing, false},
		{models.OrderDelivered, models.OrderShipped, false},
		{models.OrderDelivered, models.OrderDelivered, false},
	}
	for _, tc := range cases {
		orders := new(mockOrderStore)
		svc := newOrderService(orders, new(mockStockReader), &countingCounter{}, &recordingNotifier{})

		id := uuid.New()
		orders.On("GetByID", mock.Anything, id).Return(&models.Order{
			ID:            id,
			CustomerID:    "customer-1",
			StaffID:       &staffID,
			Status:        tc.from,
			PaymentStatus: models.PaymentPaid,
		}, nil)
		orders.On("Update", mock.Anything, mock.Anything).Return(nil)

		order, err := svc.UpdateStatus(context.Background(), staffID, id, tc.target)
		if tc.valid {
			require.NoError(t, err, "%s -> %s", tc.from, tc.target)
			assert.Equal(t, tc.target, order.Status)
		} else {
			_, ok := IsInvalidStateError(err)
			assert.True(t, ok, "%s -> %s: expected invalid state error, got %v", tc.from, tc.target, err)
		}
	}
}

func TestUpdateStatusRequiresAssignee(t *testing.T) {
	other := "staff-2"
	orders := new(mockOrderStore)
	svc := newOrderService(orders, new(mockStockReader), &countingCounter{}, &recordingNotifier{})

	id := uuid.New()
	orders.On("GetByID", mock.Anything, id).Return(&models.Order{
		ID:      id,
		StaffID: &other,
		Status:  models.OrderProcessing,
	}, nil)

	_, err := svc.UpdateStatus(context.Background(), "staff-1", id, models.OrderShipped)
	_, ok := IsForbiddenError(err)
	assert.True(t, ok, "expected forbidden error, got %v", err)
}

func TestCancelRestoresStockAndRefunds(t *testing.T) {
	orders := new(mockOrderStore)
	stocks := new(mockStockReader)
	svc := newOrderService(orders, stocks, &countingCounter{}, &recordingNotifier{})

	id := uuid.New()
	stockID := uuid.New()
	orders.On("GetByID", mock.Anything, id).Return(&models.Order{
		ID:            id,
		CustomerID:    "customer-1",
		Status:        models.OrderProcessing,
		PaymentStatus: models.PaymentPaid,
		Items:         []models.OrderItem{{StockID: stockID, Quantity: 2}},
	}, nil)
	orders.On("Update", mock.Anything, mock.Anything).Return(nil)
	stocks.On("GetStock", mock.Anything, stockID).Return(&models.Stock{ID: stockID, Quantity: 3}, nil)
	stocks.On("UpdateStock", mock.Anything, mock.MatchedBy(func(s *models.Stock) bool {
		return s.Quantity == 5
	})).Return(nil)

	order, err := svc.Cancel(context.Background(), "customer-1", id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, order.Status)
	assert.Equal(t, models.PaymentRefunded, order.PaymentStatus)
	stocks.AssertExpectations(t)
}

func TestCancelRejectsShippedOrder(t *testing.T) {
	orders := new(mockOrderStore)
	svc := newOrderService(orders, new(mockStockReader), &countingCounter{}, &recordingNotifier{})

	id := uuid.New()
	orders.On("GetByID", mock.Anything, id).Return(&models.Order{
		ID:         id,
		CustomerID: "customer-1",
		Status:     models.OrderShipped,
	}, nil)

	_, err := svc.Cancel(context.Background(), "customer-1", id)
	_, ok := IsInvalidStateError(err)
	assert.True(t, ok, "expected invalid state error, got %v", err)
}

func TestGetMineRejectsForeignOrder(t *testing.T) {
	orders := new(mockOrderStore)
	svc := newOrderService(orders, new(mockStockReader), &countingCounter{}, &recordingNotifier{})

	id := uuid.New()
	orders.On("GetByID", mock.Anything, id).Return(&models.Order{
		ID:         id,
		CustomerID: "customer-2",
	}, nil)

	_, err := svc.GetMine(context.Background(), "customer-1", id)
	_, ok := IsForbiddenError(err)
	assert.True(t, ok, "expected forbidden error, got %v", err)
}
