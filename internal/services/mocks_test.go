package services

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/clients"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/repository"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// recordingNotifier captures notifications instead of persisting them
type recordingNotifier struct {
	notified  []string
	broadcast [][]string
}

func (n *recordingNotifier) Notify(_ context.Context, userID string, _ models.NotificationType, _, _ string) {
	n.notified = append(n.notified, userID)
}

func (n *recordingNotifier) NotifyAll(_ context.Context, userIDs []string, _ models.NotificationType, _, _ string) {
	n.broadcast = append(n.broadcast, userIDs)
}

type mockDesignStore struct {
	mock.Mock
}

func (m *mockDesignStore) Create(ctx context.Context, design *models.Design) error {
	args := m.Called(ctx, design)
	return args.Error(0)
}

func (m *mockDesignStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Design, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Design), args.Error(1)
}

func (m *mockDesignStore) ListByDesigner(ctx context.Context, designerID string) ([]models.Design, error) {
	args := m.Called(ctx, designerID)
	return args.Get(0).([]models.Design), args.Error(1)
}

func (m *mockDesignStore) ListByStatus(ctx context.Context, status models.DesignStatus) ([]models.Design, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]models.Design), args.Error(1)
}

func (m *mockDesignStore) Update(ctx context.Context, design *models.Design) error {
	args := m.Called(ctx, design)
	return args.Error(0)
}

func (m *mockDesignStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockCategoryStore struct {
	mock.Mock
}

func (m *mockCategoryStore) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *mockCategoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *mockCategoryStore) GetByName(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *mockCategoryStore) List(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *mockCategoryStore) Update(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *mockCategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCategoryStore) IsDescendant(ctx context.Context, id, candidate uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, candidate)
	return args.Bool(0), args.Error(1)
}

type mockRoleLister struct {
	mock.Mock
}

func (m *mockRoleLister) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]models.User), args.Error(1)
}

type mockOrderStore struct {
	mock.Mock
}

func (m *mockOrderStore) CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	args := m.Called(ctx, order, items)
	return args.Error(0)
}

func (m *mockOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderStore) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderStore) ListUnassigned(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderStore) ListByStaff(ctx context.Context, staffID string) ([]models.Order, error) {
	args := m.Called(ctx, staffID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderStore) Update(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type mockStockReader struct {
	mock.Mock
}

func (m *mockStockReader) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockStockReader) GetStock(ctx context.Context, id uuid.UUID) (*models.Stock, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stock), args.Error(1)
}

func (m *mockStockReader) UpdateStock(ctx context.Context, stock *models.Stock) error {
	args := m.Called(ctx, stock)
	return args.Error(0)
}

// noopAlerter satisfies LowStockAlerter for checkout tests
type noopAlerter struct{}

func (noopAlerter) AlertLowStock(context.Context, []uuid.UUID) {}

// countingCounter counts Inc calls
type countingCounter struct {
	n int
}

func (c *countingCounter) Inc() { c.n++ }

type mockPaymentStore struct {
	mock.Mock
}

func (m *mockPaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockPaymentStore) MarkPaid(ctx context.Context, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPaymentStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *mockPaymentStore) GetPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentStore) GetPaymentByIntent(ctx context.Context, intentID string) (*models.Payment, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentStore) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

type mockIntentProvider struct {
	mock.Mock
}

func (m *mockIntentProvider) CreateIntent(ctx context.Context, amount float64, orderID string) (*clients.PaymentIntent, error) {
	args := m.Called(ctx, amount, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.PaymentIntent), args.Error(1)
}

func (m *mockIntentProvider) ConfirmIntent(ctx context.Context, intentID string) (*clients.PaymentIntent, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.PaymentIntent), args.Error(1)
}

func (m *mockIntentProvider) GetIntent(ctx context.Context, intentID string) (*clients.PaymentIntent, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.PaymentIntent), args.Error(1)
}

type mockConfirmGuard struct {
	mock.Mock
}

func (m *mockConfirmGuard) AcquirePaymentConfirm(ctx context.Context, intentID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, intentID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockConfirmGuard) ReleasePaymentConfirm(ctx context.Context, intentID string) error {
	args := m.Called(ctx, intentID)
	return args.Error(0)
}

type mockReturnStore struct {
	mock.Mock
}

func (m *mockReturnStore) Create(ctx context.Context, ret *models.Return) error {
	args := m.Called(ctx, ret)
	return args.Error(0)
}

func (m *mockReturnStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Return, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Return), args.Error(1)
}

func (m *mockReturnStore) ExistsForItem(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderItemID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReturnStore) ListByCustomer(ctx context.Context, customerID string) ([]models.Return, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]models.Return), args.Error(1)
}

func (m *mockReturnStore) ListUnassigned(ctx context.Context) ([]models.Return, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Return), args.Error(1)
}

func (m *mockReturnStore) ListByStaff(ctx context.Context, staffID string) ([]models.Return, error) {
	args := m.Called(ctx, staffID)
	return args.Get(0).([]models.Return), args.Error(1)
}

func (m *mockReturnStore) Update(ctx context.Context, ret *models.Return) error {
	args := m.Called(ctx, ret)
	return args.Error(0)
}

type mockOrderItemReader struct {
	mock.Mock
}

func (m *mockOrderItemReader) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderItemReader) GetItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderItem), args.Error(1)
}

type mockProductStore struct {
	mock.Mock
}

func (m *mockProductStore) Create(ctx context.Context, product *models.Product, stocks []models.Stock) error {
	args := m.Called(ctx, product, stocks)
	return args.Error(0)
}

func (m *mockProductStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductStore) GetByDesign(ctx context.Context, designID uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, designID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductStore) List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *mockProductStore) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductStore) GetStock(ctx context.Context, id uuid.UUID) (*models.Stock, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stock), args.Error(1)
}

func (m *mockProductStore) UpdateStock(ctx context.Context, stock *models.Stock) error {
	args := m.Called(ctx, stock)
	return args.Error(0)
}

func (m *mockProductStore) ListLowStock(ctx context.Context) ([]models.Stock, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Stock), args.Error(1)
}

type mockDesignReader struct {
	mock.Mock
}

func (m *mockDesignReader) GetByID(ctx context.Context, id uuid.UUID) (*models.Design, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Design), args.Error(1)
}
