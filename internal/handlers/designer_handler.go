package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/middleware"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/services"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/storage"
)

// DesignerHandler serves the designer design-workflow endpoints
type DesignerHandler struct {
	designs *services.DesignService
	images  *storage.ImageStore
	logger  *logrus.Logger
}

// NewDesignerHandler creates a new designer handler
func NewDesignerHandler(designs *services.DesignService, images *storage.ImageStore, logger *logrus.Logger) *DesignerHandler {
	return &DesignerHandler{designs: designs, images: images, logger: logger}
}

// CreateDesign handles POST /api/designer/designs. Multipart so the
// design image uploads in the same request.
func (h *DesignerHandler) CreateDesign(c *gin.Context) {
	input, ok := h.bindDesignForm(c)
	if !ok {
		return
	}
	if input.CategoryID == uuid.Nil {
		ErrorResponse(c, http.StatusBadRequest, "category_id is required")
		return
	}

	design, err := h.designs.CreateDraft(c.Request.Context(), middleware.GetUserID(c), input)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Design created", design)
}

// ListDesigns handles GET /api/designer/designs, optionally filtered by
// ?status=
func (h *DesignerHandler) ListDesigns(c *gin.Context) {
	designs, err := h.designs.ListMine(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	if status := c.Query("status"); status != "" {
		filtered := designs[:0]
		for _, d := range designs {
			if string(d.Status) == status {
				filtered = append(filtered, d)
			}
		}
		designs = filtered
	}
	SuccessResponse(c, http.StatusOK, "Designs retrieved", designs)
}

// GetDesign handles GET /api/designer/designs/:id
func (h *DesignerHandler) GetDesign(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	design, err := h.designs.GetMine(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Design retrieved", design)
}

// UpdateDesign handles PUT /api/designer/designs/:id
func (h *DesignerHandler) UpdateDesign(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	input, ok := h.bindDesignForm(c)
	if !ok {
		return
	}

	design, err := h.designs.UpdateDraft(c.Request.Context(), middleware.GetUserID(c), id, input)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Design updated", design)
}

// DeleteDesign handles DELETE /api/designer/designs/:id
func (h *DesignerHandler) DeleteDesign(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.designs.DeleteDraft(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Design deleted", nil)
}

// SubmitDesign handles POST /api/designer/designs/:id/submit
func (h *DesignerHandler) SubmitDesign(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	design, err := h.designs.Submit(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Design submitted for review", design)
}

// bindDesignForm reads the multipart design fields, saving the image when
// one is attached
func (h *DesignerHandler) bindDesignForm(c *gin.Context) (services.DesignInput, bool) {
	input := services.DesignInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
	}

	if raw := c.PostForm("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid category_id format")
			return input, false
		}
		input.CategoryID = id
	}

	if header, err := c.FormFile("image"); err == nil {
		url, err := h.images.Save(header, storage.KindDesign)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, err.Error())
			return input, false
		}
		input.ImageURL = url
	}
	return input, true
}
