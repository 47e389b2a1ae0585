package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/metrics"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/middleware"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/repository"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/services"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/storage"
)

// InventoryHandler serves the inventory-manager category, product, stock
// and design-review endpoints
type InventoryHandler struct {
	inventory *services.InventoryService
	designs   *services.DesignService
	images    *storage.ImageStore
	metrics   *metrics.Metrics
	logger    *logrus.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(
	inventory *services.InventoryService,
	designs *services.DesignService,
	images *storage.ImageStore,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *InventoryHandler {
	return &InventoryHandler{
		inventory: inventory,
		designs:   designs,
		images:    images,
		metrics:   m,
		logger:    logger,
	}
}

// ListPendingDesigns handles GET /api/inventory/designs/pending
func (h *InventoryHandler) ListPendingDesigns(c *gin.Context) {
	designs, err := h.designs.ListPending(c.Request.Context())
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Pending designs retrieved", designs)
}

// ReviewDesignRequest carries a review verdict
type ReviewDesignRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
	Reason string `json:"reason"`
}

// ReviewDesign handles PUT /api/inventory/designs/:id/review
func (h *InventoryHandler) ReviewDesign(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req ReviewDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	design, err := h.designs.Review(c.Request.Context(), middleware.GetUserID(c), id, req.Status == "approved", req.Reason)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	h.metrics.DesignsReviewed.WithLabelValues(string(design.Status)).Inc()
	SuccessResponse(c, http.StatusOK, "Design reviewed", design)
}

// CategoryRequest carries category create/update fields
type CategoryRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

// CreateCategory handles POST /api/inventory/categories
func (h *InventoryHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	category, err := h.inventory.CreateCategory(c.Request.Context(), services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Category created", category)
}

// ListCategories handles GET /api/inventory/categories
func (h *InventoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.inventory.ListCategories(c.Request.Context())
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Categories retrieved", categories)
}

// UpdateCategory handles PUT /api/inventory/categories/:id
func (h *InventoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	category, err := h.inventory.UpdateCategory(c.Request.Context(), id, services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory handles DELETE /api/inventory/categories/:id
func (h *InventoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.inventory.DeleteCategory(c.Request.Context(), id); err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category deleted", nil)
}

// StockRequest is one stock variant in a product creation request
type StockRequest struct {
	Size              string `json:"size" binding:"required"`
	Color             string `json:"color" binding:"required"`
	Quantity          int    `json:"quantity" binding:"min=0"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

// CreateProductRequest carries product creation fields
type CreateProductRequest struct {
	DesignID    uuid.UUID      `json:"design_id" binding:"required"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price" binding:"required"`
	Stocks      []StockRequest `json:"stocks" binding:"required,min=1,dive"`
}

// CreateProduct handles POST /api/inventory/products
func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	stocks := make([]services.StockInput, 0, len(req.Stocks))
	for _, s := range req.Stocks {
		stocks = append(stocks, services.StockInput{
			Size:              s.Size,
			Color:             s.Color,
			Quantity:          s.Quantity,
			LowStockThreshold: s.LowStockThreshold,
		})
	}

	product, err := h.inventory.CreateProduct(c.Request.Context(), services.ProductInput{
		DesignID:    req.DesignID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stocks:      stocks,
	})
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Product created", product)
}

// ListProducts handles GET /api/inventory/products. Unlike the public
// catalog this includes inactive products.
func (h *InventoryHandler) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Search: c.Query("search"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 50),
	}
	if raw := c.Query("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid category id")
			return
		}
		filter.CategoryID = &id
	}

	products, total, err := h.inventory.ListProducts(c.Request.Context(), filter)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved", gin.H{
		"products": products,
		"total":    total,
	})
}

// UpdateProductRequest carries mutable product fields
type UpdateProductRequest struct {
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Active      *bool    `json:"active"`
}

// UpdateProduct handles PUT /api/inventory/products/:id
func (h *InventoryHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	product, err := h.inventory.UpdateProduct(c.Request.Context(), id, services.ProductUpdate{
		Description: req.Description,
		Price:       req.Price,
		Active:      req.Active,
	})
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product updated", product)
}

// UploadProductImage handles POST /api/inventory/products/:id/image
func (h *InventoryHandler) UploadProductImage(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "An image file is required")
		return
	}

	url, err := h.images.Save(header, storage.KindProduct)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.inventory.SetProductImage(c.Request.Context(), id, url)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product image updated", product)
}

// UpdateStockRequest carries a stock refill
type UpdateStockRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// UpdateStock handles PUT /api/inventory/stocks/:id
func (h *InventoryHandler) UpdateStock(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	stock, err := h.inventory.SetStockQuantity(c.Request.Context(), id, req.Quantity)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Stock updated", stock)
}

// ListLowStock handles GET /api/inventory/stocks/low
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	stocks, err := h.inventory.ListLowStock(c.Request.Context())
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Low stock retrieved", stocks)
}
