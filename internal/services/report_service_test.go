package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/repository"
)

type mockReportStore struct {
	mock.Mock
}

func (m *mockReportStore) Create(ctx context.Context, report *models.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *mockReportStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *mockReportStore) List(ctx context.Context) ([]models.Report, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *mockReportStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReportStore) Aggregate(ctx context.Context, from, to time.Time) (*repository.PeriodAggregates, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PeriodAggregates), args.Error(1)
}

func newReportService(reports *mockReportStore) *ReportService {
	return NewReportService(reports, nil, nil, nil, nil, nil, nil, testLogger())
}

func TestGenerateMonthlyReportUsesCalendarBoundaries(t *testing.T) {
	reports := new(mockReportStore)
	svc := newReportService(reports)

	from := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	reports.On("Aggregate", mock.Anything, from, to).Return(&repository.PeriodAggregates{
		Orders:  12,
		Revenue: 1480.50,
	}, nil)
	reports.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Report) bool {
		return r.PeriodStart.Equal(from) && r.PeriodEnd.Equal(to) && r.Type == models.ReportMonthly
	})).Return(nil)

	report, err := svc.GenerateReport(context.Background(), "admin-1", models.ReportMonthly, 2026, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(12), report.Payload["orders"])
	assert.Equal(t, 1480.50, report.Payload["revenue"])
	reports.AssertExpectations(t)
}

func TestGenerateYearlyReportSpansWholeYear(t *testing.T) {
	reports := new(mockReportStore)
	svc := newReportService(reports)

	from := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	reports.On("Aggregate", mock.Anything, from, to).Return(&repository.PeriodAggregates{}, nil)
	reports.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.GenerateReport(context.Background(), "admin-1", models.ReportYearly, 2025, 0)
	require.NoError(t, err)
	reports.AssertExpectations(t)
}

func TestGenerateReportRejectsBadPeriods(t *testing.T) {
	svc := newReportService(new(mockReportStore))

	cases := []struct {
		name       string
		reportType models.ReportType
		year       int
		month      int
	}{
		{"month zero", models.ReportMonthly, 2026, 0},
		{"month thirteen", models.ReportMonthly, 2026, 13},
		{"year too small", models.ReportMonthly, 1999, 1},
		{"year too large", models.ReportYearly, 2201, 0},
		{"unknown type", models.ReportType("weekly"), 2026, 1},
	}
	for _, tc := range cases {
		_, err := svc.GenerateReport(context.Background(), "admin-1", tc.reportType, tc.year, tc.month)
		_, ok := IsValidationError(err)
		assert.True(t, ok, "%s: expected validation error, got %v", tc.name, err)
	}
}
