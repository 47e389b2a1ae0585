package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
)

// ReturnRepository handles return persistence
type ReturnRepository struct {
	db *gorm.DB
}

// NewReturnRepository creates a new return repository
func NewReturnRepository(db *gorm.DB) *ReturnRepository {
	return &ReturnRepository{db: db}
}

// Create persists a new return request
func (r *ReturnRepository) Create(ctx context.Context, ret *models.Return) error {
	if err := r.db.WithContext(ctx).Create(ret).Error; err != nil {
		return fmt.Errorf("failed to create return: %w", err)
	}
	return nil
}

// GetByID retrieves a return with its order and item
func (r *ReturnRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Return, error) {
	var ret models.Return
	if err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("OrderItem").
		Preload("OrderItem.Product").
		First(&ret, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

// ExistsForItem reports whether a return already exists for an order item
func (r *ReturnRepository) ExistsForItem(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Return{}).
		Where("order_item_id = ?", orderItemID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check return existence: %w", err)
	}
	return count > 0, nil
}

// ListByCustomer returns a customer's return requests, newest first
func (r *ReturnRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Return, error) {
	var returns []models.Return
	if err := r.db.WithContext(ctx).
		Preload("OrderItem").
		Preload("OrderItem.Product").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&returns).Error; err != nil {
		return nil, fmt.Errorf("failed to list returns: %w", err)
	}
	return returns, nil
}

// ListUnassigned returns pending returns with no staff yet
func (r *ReturnRepository) ListUnassigned(ctx context.Context) ([]models.Return, error) {
	var returns []models.Return
	if err := r.db.WithContext(ctx).
		Preload("OrderItem").
		Preload("OrderItem.Product").
		Where("status = ? AND staff_id IS NULL", models.ReturnPending).
		Order("created_at ASC").
		Find(&returns).Error; err != nil {
		return nil, fmt.Errorf("failed to list unassigned returns: %w", err)
	}
	return returns, nil
}

// ListByStaff returns returns assigned to a staff member
func (r *ReturnRepository) ListByStaff(ctx context.Context, staffID string) ([]models.Return, error) {
	var returns []models.Return
	if err := r.db.WithContext(ctx).
		Preload("OrderItem").
		Preload("OrderItem.Product").
		Where("staff_id = ?", staffID).
		Order("created_at ASC").
		Find(&returns).Error; err != nil {
		return nil, fmt.Errorf("failed to list assigned returns: %w", err)
	}
	return returns, nil
}

// Update persists changes to a return
func (r *ReturnRepository) Update(ctx context.Context, ret *models.Return) error {
	if err := r.db.WithContext(ctx).Save(ret).Error; err != nil {
		return fmt.Errorf("failed to update return: %w", err)
	}
	return nil
}

// CountPending counts returns still awaiting processing
func (r *ReturnRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Return{}).
		Where("status = ?", models.ReturnPending).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count pending returns: %w", err)
	}
	return count, nil
}
