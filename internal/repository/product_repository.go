package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
)

// ProductFilter captures the public catalog query parameters.
type ProductFilter struct {
	Search     string
	CategoryID *uuid.UUID
	MinPrice   *float64
	MaxPrice   *float64
	Sizes      []string
	Colors     []string
	InStock    bool
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
	// ActiveOnly is forced on for public callers; inventory managers may
	// list inactive products too.
	ActiveOnly bool
}

var sortableColumns = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"price":      "price",
	"name":       "name",
}

// ProductRepository handles product and stock persistence
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create persists a product together with its initial stock rows in one
// transaction.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product, stocks []models.Stock) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		for i := range stocks {
			stocks[i].ProductID = product.ID
		}
		if len(stocks) > 0 {
			if err := tx.Create(&stocks).Error; err != nil {
				return fmt.Errorf("failed to create stock: %w", err)
			}
		}
		product.Stocks = stocks
		return nil
	})
}

// GetByID retrieves a product with category and stock variants
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Stocks").
		First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns the filtered, paginated catalog slice plus the total count.
func (r *ProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.ActiveOnly {
		query = query.Where("products.active = ?", true)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("products.name ILIKE ? OR products.description ILIKE ?", pattern, pattern)
	}
	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.MinPrice != nil {
		query = query.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filter.MaxPrice)
	}

	// Variant filters join through stocks
	if len(filter.Sizes) > 0 || len(filter.Colors) > 0 || filter.InStock {
		sub := r.db.Model(&models.Stock{}).Select("product_id")
		if len(filter.Sizes) > 0 {
			sub = sub.Where("size IN ?", filter.Sizes)
		}
		if len(filter.Colors) > 0 {
			sub = sub.Where("color IN ?", filter.Colors)
		}
		if filter.InStock {
			sub = sub.Where("quantity > 0")
		}
		query = query.Where("products.id IN (?)", sub)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	column, ok := sortableColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.
		Preload("Category").
		Preload("Stocks").
		Order(column + " " + direction).
		Limit(filter.Limit).
		Offset(offset).
		Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// ListFeatured returns the most recent active products that have stock.
func (r *ProductRepository) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	sub := r.db.Model(&models.Stock{}).Select("product_id").Where("quantity > 0")
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Stocks").
		Where("active = ? AND id IN (?)", true, sub).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	return products, nil
}

// ListRelated returns in-stock products sharing a category, excluding the
// product itself.
func (r *ProductRepository) ListRelated(ctx context.Context, productID, categoryID uuid.UUID, limit int) ([]models.Product, error) {
	var products []models.Product
	sub := r.db.Model(&models.Stock{}).Select("product_id").Where("quantity > 0")
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Stocks").
		Where("active = ? AND category_id = ? AND id <> ? AND id IN (?)", true, categoryID, productID, sub).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list related products: %w", err)
	}
	return products, nil
}

// Update persists changes to a product
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// GetByDesign retrieves the product created from a design, if any
func (r *ProductRepository) GetByDesign(ctx context.Context, designID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "design_id = ?", designID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetStock retrieves a stock row
func (r *ProductRepository) GetStock(ctx context.Context, id uuid.UUID) (*models.Stock, error) {
	var stock models.Stock
	if err := r.db.WithContext(ctx).First(&stock, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

// ListStocksByProduct returns all variants of a product
func (r *ProductRepository) ListStocksByProduct(ctx context.Context, productID uuid.UUID) ([]models.Stock, error) {
	var stocks []models.Stock
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	return stocks, nil
}

// UpdateStock persists changes to a stock row
func (r *ProductRepository) UpdateStock(ctx context.Context, stock *models.Stock) error {
	if err := r.db.WithContext(ctx).Save(stock).Error; err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	return nil
}

// ListLowStock returns stock rows at or below their low-stock threshold
func (r *ProductRepository) ListLowStock(ctx context.Context) ([]models.Stock, error) {
	var stocks []models.Stock
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("quantity <= low_stock_threshold").
		Order("quantity ASC").
		Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	return stocks, nil
}

// CountLowStock returns how many stock rows sit at or below threshold
func (r *ProductRepository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Stock{}).
		Where("quantity <= low_stock_threshold").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count low stock: %w", err)
	}
	return count, nil
}
