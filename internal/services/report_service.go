package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/repository"
)

// ReportStore is the persistence surface for reports and aggregation
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	List(ctx context.Context) ([]models.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Aggregate(ctx context.Context, from, to time.Time) (*repository.PeriodAggregates, error)
}

// OrderStats supplies live order figures for the dashboard
type OrderStats interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
	TotalRevenue(ctx context.Context, from, to *time.Time) (float64, error)
}

// DesignStats supplies design counts grouped by status
type DesignStats interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// UserStats supplies user counts grouped by role
type UserStats interface {
	CountByRole(ctx context.Context) (map[string]int64, error)
}

// ReturnStats supplies the pending-return count
type ReturnStats interface {
	CountPending(ctx context.Context) (int64, error)
}

// StockStats supplies the low-stock row count
type StockStats interface {
	CountLowStock(ctx context.Context) (int64, error)
}

// StatsCache caches the dashboard snapshot
type StatsCache interface {
	GetCachedStats(ctx context.Context, dest interface{}) (bool, error)
	SetCachedStats(ctx context.Context, stats interface{}, ttl time.Duration) error
}

// DashboardStats is the admin dashboard snapshot
type DashboardStats struct {
	TotalRevenue    float64          `json:"total_revenue"`
	OrdersByStatus  map[string]int64 `json:"orders_by_status"`
	DesignsByStatus map[string]int64 `json:"designs_by_status"`
	UsersByRole     map[string]int64 `json:"users_by_role"`
	PendingReturns  int64            `json:"pending_returns"`
	LowStockItems   int64            `json:"low_stock_items"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// ReportService handles the admin dashboard and report generation
type ReportService struct {
	reports ReportStore
	orders  OrderStats
	designs DesignStats
	users   UserStats
	returns ReturnStats
	stocks  StockStats
	cache   StatsCache
	logger  *logrus.Logger
}

// NewReportService creates a new report service
func NewReportService(
	reports ReportStore,
	orders OrderStats,
	designs DesignStats,
	users UserStats,
	returns ReturnStats,
	stocks StockStats,
	cache StatsCache,
	logger *logrus.Logger,
) *ReportService {
	return &ReportService{
		reports: reports,
		orders:  orders,
		designs: designs,
		users:   users,
		returns: returns,
		stocks:  stocks,
		cache:   cache,
		logger:  logger,
	}
}

// DashboardStats builds the admin dashboard snapshot, served from cache
// for a short window to keep repeated loads cheap.
func (s *ReportService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		var cached DashboardStats
		if hit, err := s.cache.GetCachedStats(ctx, &cached); err != nil {
			s.logger.WithError(err).Warn("Dashboard cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	revenue, err := s.orders.TotalRevenue(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	orderCounts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	designCounts, err := s.designs.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	roleCounts, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	pendingReturns, err := s.returns.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.stocks.CountLowStock(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalRevenue:    revenue,
		OrdersByStatus:  orderCounts,
		DesignsByStatus: designCounts,
		UsersByRole:     roleCounts,
		PendingReturns:  pendingReturns,
		LowStockItems:   lowStock,
		GeneratedAt:     now(),
	}

	if s.cache != nil {
		if err := s.cache.SetCachedStats(ctx, stats, 60*time.Second); err != nil {
			s.logger.WithError(err).Warn("Dashboard cache write failed")
		}
	}
	return stats, nil
}

// GenerateReport aggregates a calendar month or year and persists the
// result. Periods are UTC calendar boundaries.
func (s *ReportService) GenerateReport(ctx context.Context, adminID string, reportType models.ReportType, year, month int) (*models.Report, error) {
	if year < 2000 || year > 2200 {
		return nil, NewValidationError("year", "year is out of range")
	}

	var from, to time.Time
	switch reportType {
	case models.ReportMonthly:
		if month < 1 || month > 12 {
			return nil, NewValidationError("month", "month must be between 1 and 12")
		}
		from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, 0)
	case models.ReportYearly:
		from = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(1, 0, 0)
	default:
		return nil, NewValidationError("type", fmt.Sprintf("unknown report type %q", reportType))
	}

	agg, err := s.reports.Aggregate(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		CreatedBy:   adminID,
		Type:        reportType,
		PeriodStart: from,
		PeriodEnd:   to,
		Payload: models.JSONB{
			"orders":        agg.Orders,
			"paid_orders":   agg.PaidOrders,
			"revenue":       agg.Revenue,
			"units_sold":    agg.UnitsSold,
			"new_users":     agg.NewUsers,
			"new_designs":   agg.NewDesigns,
			"returns_filed": agg.ReturnsFiled,
		},
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"report_id": report.ID,
		"type":      reportType,
		"from":      from,
		"to":        to,
	}).Info("Report generated")
	return report, nil
}

// ListReports returns all generated reports, newest first
func (s *ReportService) ListReports(ctx context.Context) ([]models.Report, error) {
	return s.reports.List(ctx)
}

// GetReport returns a single report
func (s *ReportService) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("report", id.String())
		}
		return nil, err
	}
	return report, nil
}

// DeleteReport removes a generated report
func (s *ReportService) DeleteReport(ctx context.Context, id uuid.UUID) error {
	if err := s.reports.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("report", id.String())
		}
		return err
	}
	return nil
}
