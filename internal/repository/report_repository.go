package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
)

// ReportRepository handles report persistence and the aggregation queries
// behind report generation
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create persists a generated report
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// GetByID retrieves a report
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns reports, newest first
func (r *ReportRepository) List(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// PeriodAggregates holds the per-period figures a report is built from.
type PeriodAggregates struct {
	Orders        int64   `json:"orders"`
	PaidOrders    int64   `json:"paid_orders"`
	Revenue       float64 `json:"revenue"`
	UnitsSold     int64   `json:"units_sold"`
	NewUsers      int64   `json:"new_users"`
	NewDesigns    int64   `json:"new_designs"`
	ReturnsFiled  int64   `json:"returns_filed"`
}

// Aggregate computes order, revenue, user, design and return figures for
// [from, to). Computed per request; there is no incremental materialization.
func (r *ReportRepository) Aggregate(ctx context.Context, from, to time.Time) (*PeriodAggregates, error) {
	agg := &PeriodAggregates{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&agg.Orders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var paid struct {
		Count   int64
		Revenue float64
	}
	if err := db.Model(&models.Order{}).
		Select("COUNT(*) as count, COALESCE(SUM(total_amount), 0) as revenue").
		Where("payment_status = ? AND created_at >= ? AND created_at < ?", models.PaymentPaid, from, to).
		Scan(&paid).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate paid orders: %w", err)
	}
	agg.PaidOrders = paid.Count
	agg.Revenue = paid.Revenue

	if err := db.Table("order_items").
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.payment_status = ? AND orders.created_at >= ? AND orders.created_at < ?", models.PaymentPaid, from, to).
		Scan(&agg.UnitsSold).Error; err != nil {
		return nil, fmt.Errorf("failed to sum units sold: %w", err)
	}

	if err := db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&agg.NewUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count new users: %w", err)
	}

	if err := db.Model(&models.Design{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&agg.NewDesigns).Error; err != nil {
		return nil, fmt.Errorf("failed to count new designs: %w", err)
	}

	if err := db.Model(&models.Return{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&agg.ReturnsFiled).Error; err != nil {
		return nil, fmt.Errorf("failed to count returns: %w", err)
	}

	return agg, nil
}

// Delete removes a report
func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Report{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
