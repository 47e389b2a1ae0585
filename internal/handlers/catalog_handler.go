package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/repository"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/services"
)

// CatalogHandler serves the public product and category endpoints
type CatalogHandler struct {
	catalog *services.CatalogService
	logger  *logrus.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *services.CatalogService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// ListProducts handles GET /api/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Search:    c.Query("search"),
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 12),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		InStock:   c.Query("in_stock") == "true",
	}

	if raw := c.Query("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid category id")
			return
		}
		filter.CategoryID = &id
	}
	if raw := c.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid min_price")
			return
		}
		filter.MinPrice = &v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid max_price")
			return
		}
		filter.MaxPrice = &v
	}
	if raw := c.Query("sizes"); raw != "" {
		filter.Sizes = strings.Split(raw, ",")
	}
	if raw := c.Query("colors"); raw != "" {
		filter.Colors = strings.Split(raw, ",")
	}

	page, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved", page)
}

// ListFeatured handles GET /api/products/featured
func (h *CatalogHandler) ListFeatured(c *gin.Context) {
	products, err := h.catalog.ListFeatured(c.Request.Context(), queryInt(c, "limit", 12))
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Featured products retrieved", products)
}

// GetProduct handles GET /api/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved", product)
}

// GetAvailability handles GET /api/products/:id/availability
func (h *CatalogHandler) GetAvailability(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	availability, err := h.catalog.GetAvailability(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Availability retrieved", availability)
}

// ListRelated handles GET /api/products/:id/related
func (h *CatalogHandler) ListRelated(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	products, err := h.catalog.ListRelated(c.Request.Context(), id, queryInt(c, "limit", 6))
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Related products retrieved", products)
}

// ListCategories handles GET /api/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Categories retrieved", categories)
}

// GetCategory handles GET /api/categories/:id
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	category, err := h.catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category retrieved", category)
}

// queryInt parses an integer query parameter with a fallback
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// pathUUID parses a uuid path parameter, responding 400 on failure
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
