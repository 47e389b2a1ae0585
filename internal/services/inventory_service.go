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
	natsclient "github.com/AdithaBuwaneka/fashion-mart-backend/internal/nats"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/repository"
)

// CategoryStore is the persistence surface for category management
type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	IsDescendant(ctx context.Context, id, candidate uuid.UUID) (bool, error)
}

// ProductStore is the persistence surface for product and stock management
type ProductStore interface {
	Create(ctx context.Context, product *models.Product, stocks []models.Stock) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByDesign(ctx context.Context, designID uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error)
	Update(ctx context.Context, product *models.Product) error
	GetStock(ctx context.Context, id uuid.UUID) (*models.Stock, error)
	UpdateStock(ctx context.Context, stock *models.Stock) error
	ListLowStock(ctx context.Context) ([]models.Stock, error)
}

// DesignReader looks up designs for product creation
type DesignReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Design, error)
}

// RoleLister lists the users holding a role, for broadcast notifications
type RoleLister interface {
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

// LowStockGuard dedupes low-stock alerts per stock row
type LowStockGuard interface {
	MarkLowStockAlerted(ctx context.Context, stockID string, ttl time.Duration) (bool, error)
	ClearLowStockAlert(ctx context.Context, stockID string) error
}

// InventoryService handles category, product and stock management
type InventoryService struct {
	categories    CategoryStore
	products      ProductStore
	designs       DesignReader
	users         RoleLister
	notifications Notifier
	guard         LowStockGuard
	events        *natsclient.Client
	logger        *logrus.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	categories CategoryStore,
	products ProductStore,
	designs DesignReader,
	users RoleLister,
	notifications Notifier,
	guard LowStockGuard,
	events *natsclient.Client,
	logger *logrus.Logger,
) *InventoryService {
	return &InventoryService{
		categories:    categories,
		products:      products,
		designs:       designs,
		users:         users,
		notifications: notifications,
		guard:         guard,
		events:        events,
		logger:        logger,
	}
}

// CategoryInput carries category create/update fields
type CategoryInput struct {
	Name        string
	Description string
	ParentID    *uuid.UUID
}

// CreateCategory creates a category. Names are unique; a duplicate is a
// conflict, not a validation failure.
func (s *InventoryService) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if input.Name == "" {
		return nil, NewValidationError("name", "name is required")
	}

	if _, err := s.categories.GetByName(ctx, input.Name); err == nil {
		return nil, NewConflictError("category", "a category named "+input.Name+" already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if input.ParentID != nil {
		if _, err := s.categories.GetByID(ctx, *input.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewNotFoundError("category", input.ParentID.String())
			}
			return nil, err
		}
	}

	category := &models.Category{
		Name:        input.Name,
		Description: input.Description,
		ParentID:    input.ParentID,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories returns every category for the inventory console
func (s *InventoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// UpdateCategory updates a category, rejecting parent assignments that
// would introduce a cycle in the tree.
func (s *InventoryService) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("category", id.String())
		}
		return nil, err
	}

	if input.Name != "" && input.Name != category.Name {
		if _, err := s.categories.GetByName(ctx, input.Name); err == nil {
			return nil, NewConflictError("category", "a category named "+input.Name+" already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		category.Name = input.Name
	}
	if input.Description != "" {
		category.Description = input.Description
	}
	if input.ParentID != nil {
		if *input.ParentID == id {
			return nil, NewValidationError("parent_id", "category cannot be its own parent")
		}
		cyclic, err := s.categories.IsDescendant(ctx, id, *input.ParentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if cyclic {
			return nil, NewValidationError("parent_id", "parent assignment would create a cycle")
		}
		category.ParentID = input.ParentID
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes an unused category
func (s *InventoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("category", id.String())
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return NewConflictError("category", "category is still referenced by products")
		}
		return err
	}
	return nil
}

// StockInput carries one stock variant for product creation
type StockInput struct {
	Size              string
	Color             string
	Quantity          int
	LowStockThreshold int
}

// ProductInput carries product creation fields
type ProductInput struct {
	DesignID    uuid.UUID
	Name        string
	Description string
	Price       float64
	ImageURL    string
	Stocks      []StockInput
}

// CreateProduct materializes an approved design into a sellable product.
// The source design must be approved, and each design yields at most one
// product.
func (s *InventoryService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if input.Price < 0 {
		return nil, NewValidationError("price", "price must be non-negative")
	}

	design, err := s.designs.GetByID(ctx, input.DesignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("design", input.DesignID.String())
		}
		return nil, err
	}
	if design.Status != models.DesignApproved {
		return nil, NewValidationError("design_id",
			fmt.Sprintf("design is %s; only approved designs become products", design.Status))
	}

	if _, err := s.products.GetByDesign(ctx, input.DesignID); err == nil {
		return nil, NewConflictError("product", "a product already exists for this design")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name := input.Name
	if name == "" {
		name = design.Name
	}
	imageURL := input.ImageURL
	if imageURL == "" {
		imageURL = design.ImageURL
	}

	stocks := make([]models.Stock, 0, len(input.Stocks))
	for _, in := range input.Stocks {
		if in.Quantity < 0 {
			return nil, NewValidationError("stocks", "quantity must be non-negative")
		}
		threshold := in.LowStockThreshold
		if threshold <= 0 {
			threshold = 5
		}
		stocks = append(stocks, models.Stock{
			Size:              in.Size,
			Color:             in.Color,
			Quantity:          in.Quantity,
			LowStockThreshold: threshold,
		})
	}

	product := &models.Product{
		DesignID:    input.DesignID,
		CategoryID:  design.CategoryID,
		Name:        name,
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    imageURL,
		Active:      true,
	}
	if err := s.products.Create(ctx, product, stocks); err != nil {
		return nil, err
	}
	return product, nil
}

// ListProducts returns the full product list, inactive included
func (s *InventoryService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.products.List(ctx, filter)
}

// ProductUpdate carries mutable product fields
type ProductUpdate struct {
	Description *string
	Price       *float64
	Active      *bool
}

// UpdateProduct applies price/visibility changes
func (s *InventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, update ProductUpdate) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("product", id.String())
		}
		return nil, err
	}

	if update.Price != nil {
		if *update.Price < 0 {
			return nil, NewValidationError("price", "price must be non-negative")
		}
		product.Price = *update.Price
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Active != nil {
		product.Active = *update.Active
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// SetProductImage replaces a product's catalog image
func (s *InventoryService) SetProductImage(ctx context.Context, id uuid.UUID, imageURL string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("product", id.String())
		}
		return nil, err
	}

	product.ImageURL = imageURL
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// SetStockQuantity sets a stock row's quantity and clears the low-stock
// alert marker once the row is refilled above threshold.
func (s *InventoryService) SetStockQuantity(ctx context.Context, stockID uuid.UUID, quantity int) (*models.Stock, error) {
	if quantity < 0 {
		return nil, NewValidationError("quantity", "quantity must be non-negative")
	}

	stock, err := s.products.GetStock(ctx, stockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("stock", stockID.String())
		}
		return nil, err
	}

	stock.Quantity = quantity
	if err := s.products.UpdateStock(ctx, stock); err != nil {
		return nil, err
	}

	if s.guard != nil && quantity > stock.LowStockThreshold {
		if err := s.guard.ClearLowStockAlert(ctx, stockID.String()); err != nil {
			s.logger.WithError(err).Warn("Failed to clear low-stock alert marker")
		}
	}
	return stock, nil
}

// ListLowStock returns stock rows at or below their threshold
func (s *InventoryService) ListLowStock(ctx context.Context) ([]models.Stock, error) {
	return s.products.ListLowStock(ctx)
}

// AlertLowStock notifies inventory managers about stock rows that dropped
// to or below their threshold. Redis dedupes repeat alerts for the same
// crossing; without Redis every crossing alerts.
func (s *InventoryService) AlertLowStock(ctx context.Context, stockIDs []uuid.UUID) {
	for _, stockID := range stockIDs {
		stock, err := s.products.GetStock(ctx, stockID)
		if err != nil {
			s.logger.WithError(err).WithField("stock_id", stockID).Warn("Failed to load stock for alert check")
			continue
		}
		if stock.Quantity > stock.LowStockThreshold {
			continue
		}

		if s.guard != nil {
			first, err := s.guard.MarkLowStockAlerted(ctx, stockID.String(), 24*time.Hour)
			if err != nil {
				s.logger.WithError(err).Warn("Low-stock alert dedupe check failed")
			} else if !first {
				continue
			}
		}

		managers, err := s.users.ListByRole(ctx, models.RoleInventoryManager)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to list inventory managers")
			continue
		}
		ids := make([]string, 0, len(managers))
		for _, m := range managers {
			ids = append(ids, m.ID)
		}
		s.notifications.NotifyAll(ctx, ids, models.NotificationLowStock,
			"Low stock",
			fmt.Sprintf("Stock %s/%s is down to %d units", stock.Size, stock.Color, stock.Quantity))

		s.events.Publish(natsclient.SubjectStockLow, natsclient.StockEvent{
			EventType: natsclient.SubjectStockLow,
			StockID:   stock.ID.String(),
			ProductID: stock.ProductID.String(),
			Quantity:  stock.Quantity,
			Threshold: stock.LowStockThreshold,
			Timestamp: now(),
		})
	}
}
