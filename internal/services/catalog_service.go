package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/repository"
)

// ProductReader is the persistence surface for the public catalog
type ProductReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Product, error)
	ListRelated(ctx context.Context, productID, categoryID uuid.UUID, limit int) ([]models.Product, error)
	ListStocksByProduct(ctx context.Context, productID uuid.UUID) ([]models.Stock, error)
}

// CategoryReader is the category surface for public browsing
type CategoryReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListRoots(ctx context.Context) ([]models.Category, error)
}

// CatalogService serves the public catalog. Every query is pinned to
// active products; no filter combination can widen that.
type CatalogService struct {
	products   ProductReader
	categories CategoryReader
	logger     *logrus.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(products ProductReader, categories CategoryReader, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		logger:     logger,
	}
}

// ProductPage is one page of catalog results
type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

// ListProducts returns the filtered catalog page for public callers
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) (*ProductPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 12
	}
	filter.ActiveOnly = true

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProductPage{
		Products: products,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}, nil
}

// GetProduct loads one active product
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("product", id.String())
		}
		return nil, err
	}
	if !product.Active {
		return nil, NewNotFoundError("product", id.String())
	}
	return product, nil
}

// ListFeatured returns the newest in-stock products
func (s *CatalogService) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	if limit < 1 || limit > 50 {
		limit = 12
	}
	return s.products.ListFeatured(ctx, limit)
}

// Availability maps size -> color -> quantity for one product.
type Availability struct {
	Available bool                      `json:"available"`
	Stock     map[string]map[string]int `json:"stock"`
}

// GetAvailability returns the per-variant stock map
func (s *CatalogService) GetAvailability(ctx context.Context, productID uuid.UUID) (*Availability, error) {
	stocks, err := s.products.ListStocksByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(stocks) == 0 {
		return nil, NewNotFoundError("product", productID.String())
	}

	availability := &Availability{Stock: make(map[string]map[string]int)}
	for _, stock := range stocks {
		if availability.Stock[stock.Size] == nil {
			availability.Stock[stock.Size] = make(map[string]int)
		}
		availability.Stock[stock.Size][stock.Color] = stock.Quantity
		if stock.Quantity > 0 {
			availability.Available = true
		}
	}
	return availability, nil
}

// ListRelated returns in-stock products from the same category
func (s *CatalogService) ListRelated(ctx context.Context, productID uuid.UUID, limit int) ([]models.Product, error) {
	if limit < 1 || limit > 50 {
		limit = 6
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("product", productID.String())
		}
		return nil, err
	}
	return s.products.ListRelated(ctx, productID, product.CategoryID, limit)
}

// ListCategories returns the category tree
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.ListRoots(ctx)
}

// GetCategory loads one category with its subcategories
func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("category", id.String())
		}
		return nil, err
	}
	return category, nil
}
