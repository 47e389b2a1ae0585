package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
)

// DesignRepository handles design persistence
type DesignRepository struct {
	db *gorm.DB
}

// NewDesignRepository creates a new design repository
func NewDesignRepository(db *gorm.DB) *DesignRepository {
	return &DesignRepository{db: db}
}

// Create persists a new design
func (r *DesignRepository) Create(ctx context.Context, design *models.Design) error {
	if err := r.db.WithContext(ctx).Create(design).Error; err != nil {
		return fmt.Errorf("failed to create design: %w", err)
	}
	return nil
}

// GetByID retrieves a design with its category and designer
func (r *DesignRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Design, error) {
	var design models.Design
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Designer").
		First(&design, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &design, nil
}

// ListByDesigner returns a designer's designs
func (r *DesignRepository) ListByDesigner(ctx context.Context, designerID string) ([]models.Design, error) {
	var designs []models.Design
	query := r.db.WithContext(ctx).
		Preload("Category").
		Where("designer_id = ?", designerID)
	if err := query.Order("created_at DESC").Find(&designs).Error; err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	return designs, nil
}

// ListByStatus returns designs in a given lifecycle state
func (r *DesignRepository) ListByStatus(ctx context.Context, status models.DesignStatus) ([]models.Design, error) {
	var designs []models.Design
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Designer").
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&designs).Error; err != nil {
		return nil, fmt.Errorf("failed to list designs by status: %w", err)
	}
	return designs, nil
}

// Update persists changes to a design
func (r *DesignRepository) Update(ctx context.Context, design *models.Design) error {
	if err := r.db.WithContext(ctx).Save(design).Error; err != nil {
		return fmt.Errorf("failed to update design: %w", err)
	}
	return nil
}

// Delete removes a design
func (r *DesignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Design{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete design: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByStatus returns counts of designs grouped by status
func (r *DesignRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Design{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count designs by status: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
