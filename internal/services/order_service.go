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
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/repository"
)

// OrderStore is the persistence surface for orders
type OrderStore interface {
	CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	ListUnassigned(ctx context.Context) ([]models.Order, error)
	ListByStaff(ctx context.Context, staffID string) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) error
}

// StockReader resolves product and stock rows for checkout validation
// and restores reserved units when an order is cancelled
type StockReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetStock(ctx context.Context, id uuid.UUID) (*models.Stock, error)
	UpdateStock(ctx context.Context, stock *models.Stock) error
}

// LowStockAlerter fires low-stock notifications after a checkout decrement
type LowStockAlerter interface {
	AlertLowStock(ctx context.Context, stockIDs []uuid.UUID)
}

// Counter is the minimal metrics surface services emit to
type Counter interface {
	Inc()
}

// OrderService handles checkout, cancellation and fulfilment
type OrderService struct {
	orders         OrderStore
	stocks         StockReader
	alerter        LowStockAlerter
	notifications  Notifier
	events         *natsclient.Client
	stockConflicts Counter
	logger         *logrus.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orders OrderStore,
	stocks StockReader,
	alerter LowStockAlerter,
	notifications Notifier,
	events *natsclient.Client,
	stockConflicts Counter,
	logger *logrus.Logger,
) *OrderService {
	return &OrderService{
		orders:         orders,
		stocks:         stocks,
		alerter:        alerter,
		notifications:  notifications,
		events:         events,
		stockConflicts: stockConflicts,
		logger:         logger,
	}
}

// CheckoutItem is one requested line of a checkout
type CheckoutItem struct {
	StockID  uuid.UUID
	Quantity int
}

// CheckoutInput carries the checkout request
type CheckoutInput struct {
	Items           []CheckoutItem
	ShippingAddress models.JSONB
}

// Checkout validates the requested items, prices them from the live
// catalog and creates the order. Stock decrements happen inside the
// order transaction; a failed decrement rolls the whole order back.
func (s *OrderService) Checkout(ctx context.Context, customerID string, input CheckoutInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, NewValidationError("items", "at least one item is required")
	}

	seen := make(map[uuid.UUID]bool, len(input.Items))
	items := make([]models.OrderItem, 0, len(input.Items))
	var total float64
	for _, in := range input.Items {
		if in.Quantity <= 0 {
			return nil, NewValidationError("items", "quantity must be positive")
		}
		if seen[in.StockID] {
			return nil, NewValidationError("items", "duplicate stock entry "+in.StockID.String())
		}
		seen[in.StockID] = true

		stock, err := s.stocks.GetStock(ctx, in.StockID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewNotFoundError("stock", in.StockID.String())
			}
			return nil, err
		}
		product, err := s.stocks.GetByID(ctx, stock.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Active {
			return nil, NewValidationError("items", fmt.Sprintf("product %s is no longer available", product.Name))
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			StockID:   stock.ID,
			Quantity:  in.Quantity,
			UnitPrice: product.Price,
		})
		total += product.Price * float64(in.Quantity)
	}

	order := &models.Order{
		CustomerID:      customerID,
		Status:          models.OrderPending,
		PaymentStatus:   models.PaymentPending,
		TotalAmount:     total,
		ShippingAddress: input.ShippingAddress,
	}
	if err := s.orders.CreateWithItems(ctx, order, items); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			if s.stockConflicts != nil {
				s.stockConflicts.Inc()
			}
			return nil, NewValidationError("items", "insufficient stock for one or more items")
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"customer_id": customerID,
		"total":       total,
	}).Info("Order created")

	stockIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		stockIDs = append(stockIDs, item.StockID)
	}
	s.alerter.AlertLowStock(ctx, stockIDs)

	s.notifications.Notify(ctx, customerID, models.NotificationOrderPlaced,
		"Order placed",
		fmt.Sprintf("Order %s was placed for $%.2f", order.ID, total))

	s.events.Publish(natsclient.SubjectOrderCreated, natsclient.OrderEvent{
		EventType:   natsclient.SubjectOrderCreated,
		OrderID:     order.ID.String(),
		CustomerID:  customerID,
		Status:      string(order.Status),
		TotalAmount: total,
		Timestamp:   now(),
	})
	return order, nil
}

// ListMine returns the customer's own orders
func (s *OrderService) ListMine(ctx context.Context, customerID string) ([]models.Order, error) {
	return s.orders.ListByCustomer(ctx, customerID)
}

// GetMine returns one of the customer's own orders
func (s *OrderService) GetMine(ctx context.Context, customerID string, id uuid.UUID) (*models.Order, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, NewForbiddenError("order belongs to another customer")
	}
	return order, nil
}

// Cancel cancels an order that has not shipped yet. Cancelling restores
// the reserved stock.
func (s *OrderService) Cancel(ctx context.Context, customerID string, id uuid.UUID) (*models.Order, error) {
	order, err := s.GetMine(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderPending && order.Status != models.OrderProcessing {
		return nil, NewInvalidStateError("cancel order", string(order.Status), "pending or processing")
	}

	order.Status = models.OrderCancelled
	if order.PaymentStatus == models.PaymentPaid {
		order.PaymentStatus = models.PaymentRefunded
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	for _, item := range order.Items {
		stock, err := s.stocks.GetStock(ctx, item.StockID)
		if err != nil {
			s.logger.WithError(err).WithField("stock_id", item.StockID).Warn("Failed to restore stock after cancellation")
			continue
		}
		stock.Quantity += item.Quantity
		if err := s.stocks.UpdateStock(ctx, stock); err != nil {
			s.logger.WithError(err).WithField("stock_id", item.StockID).Warn("Failed to restore stock after cancellation")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"customer_id": customerID,
	}).Info("Order cancelled")

	s.publishStatusChange(order)
	return order, nil
}

// ListUnassigned returns the staff work queue of paid orders with no
// assignee yet.
func (s *OrderService) ListUnassigned(ctx context.Context) ([]models.Order, error) {
	return s.orders.ListUnassigned(ctx)
}

// ListAssigned returns the orders assigned to a staff member
func (s *OrderService) ListAssigned(ctx context.Context, staffID string) ([]models.Order, error) {
	return s.orders.ListByStaff(ctx, staffID)
}

// Assign claims an order for a staff member. Only paid orders in
// processing are assignable, and only once.
func (s *OrderService) Assign(ctx context.Context, staffID string, id uuid.UUID) (*models.Order, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderProcessing || order.PaymentStatus != models.PaymentPaid {
		return nil, NewInvalidStateError("assign order",
			fmt.Sprintf("%s/%s", order.Status, order.PaymentStatus), "processing/paid")
	}
	if order.StaffID != nil {
		return nil, NewConflictError("order", "order is already assigned")
	}

	order.StaffID = &staffID
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"staff_id": staffID,
	}).Info("Order assigned")
	return order, nil
}

// nextOrderStatus holds the only forward transitions staff may apply
var nextOrderStatus = map[models.OrderStatus]models.OrderStatus{
	models.OrderProcessing: models.OrderShipped,
	models.OrderShipped:    models.OrderDelivered,
}

// UpdateStatus advances an assigned order one step: processing -> shipped
// -> delivered. No skips, no moves backwards.
func (s *OrderService) UpdateStatus(ctx context.Context, staffID string, id uuid.UUID, target models.OrderStatus) (*models.Order, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.StaffID == nil || *order.StaffID != staffID {
		return nil, NewForbiddenError("order is not assigned to you")
	}

	next, ok := nextOrderStatus[order.Status]
	if !ok || next != target {
		return nil, NewInvalidStateError("update order status", string(order.Status), string(target))
	}

	order.Status = target
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"staff_id": staffID,
		"status":   target,
	}).Info("Order status updated")

	s.notifications.Notify(ctx, order.CustomerID, models.NotificationOrderStatus,
		"Order update",
		fmt.Sprintf("Order %s is now %s", order.ID, target))

	s.publishStatusChange(order)
	return order, nil
}

func (s *OrderService) getOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("order", id.String())
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) publishStatusChange(order *models.Order) {
	s.events.Publish(natsclient.SubjectOrderStatusChanged, natsclient.OrderEvent{
		EventType:   natsclient.SubjectOrderStatusChanged,
		OrderID:     order.ID.String(),
		CustomerID:  order.CustomerID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		Timestamp:   now(),
	})
}
