package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
)

// ErrInsufficientStock is returned when a checkout requests more units than
// a stock row holds. The whole order transaction rolls back.
var ErrInsufficientStock = errors.New("insufficient stock")

// OrderRepository handles order, order item and payment persistence
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateWithItems persists an order and its items, decrementing each stock
// row inside the same transaction. The decrement is a conditional update
// guarded by quantity >= requested; zero rows affected means another
// checkout got the units first, and everything rolls back.
func (r *OrderRepository) CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID

			result := tx.Model(&models.Stock{}).
				Where("id = ? AND quantity >= ?", items[i].StockID, items[i].Quantity).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", items[i].Quantity))
			if result.Error != nil {
				return fmt.Errorf("failed to decrement stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("stock %s: %w", items[i].StockID, ErrInsufficientStock)
			}
		}

		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		order.Items = items
		return nil
	})
}

// GetByID retrieves an order with its items, payment and assigned staff
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Stock").
		Preload("Payment").
		Preload("Staff").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetItem retrieves a single order item
func (r *OrderRepository) GetItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByCustomer returns a customer's orders, newest first
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Payment").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListUnassigned returns paid, processing orders with no staff yet
func (r *OrderRepository) ListUnassigned(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		Where("status = ? AND payment_status = ? AND staff_id IS NULL",
			models.OrderProcessing, models.PaymentPaid).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list unassigned orders: %w", err)
	}
	return orders, nil
}

// ListByStaff returns orders assigned to a staff member
func (r *OrderRepository) ListByStaff(ctx context.Context, staffID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		Where("staff_id = ?", staffID).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list assigned orders: %w", err)
	}
	return orders, nil
}

// Update persists changes to an order
func (r *OrderRepository) Update(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

// MarkPaid transitions an order to (processing, paid) iff it is still
// awaiting payment. Returns the number of rows moved so callers can tell a
// first confirmation from a replay.
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, models.PaymentPending).
		Updates(map[string]interface{}{
			"status":         models.OrderProcessing,
			"payment_status": models.PaymentPaid,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// CreatePayment persists a payment row
func (r *OrderRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetPaymentByOrder retrieves the payment row for an order
func (r *OrderRepository) GetPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPaymentByIntent retrieves the payment row for a provider intent id
func (r *OrderRepository) GetPaymentByIntent(ctx context.Context, intentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "payment_intent_id = ?", intentID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdatePayment persists changes to a payment row
func (r *OrderRepository) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Save(payment).Error; err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

// CountByStatus returns counts of orders grouped by status
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// TotalRevenue sums the total amount of paid orders, optionally scoped to a
// time range.
func (r *OrderRepository) TotalRevenue(ctx context.Context, from, to *time.Time) (float64, error) {
	var revenue float64
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("payment_status = ?", models.PaymentPaid)
	if from != nil && to != nil {
		query = query.Where("created_at BETWEEN ? AND ?", *from, *to)
	}
	if err := query.Scan(&revenue).Error; err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return revenue, nil
}

// CountInRange counts orders created inside [from, to)
func (r *OrderRepository) CountInRange(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}
