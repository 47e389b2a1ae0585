package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/metrics"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/middleware"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/services"
)

// StaffHandler serves the staff fulfilment endpoints
type StaffHandler struct {
	orders  *services.OrderService
	returns *services.ReturnService
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(
	orders *services.OrderService,
	returns *services.ReturnService,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *StaffHandler {
	return &StaffHandler{
		orders:  orders,
		returns: returns,
		metrics: m,
		logger:  logger,
	}
}

// ListPendingOrders handles GET /api/staff/orders/pending. These are paid
// processing orders with no staff assigned yet.
func (h *StaffHandler) ListPendingOrders(c *gin.Context) {
	orders, err := h.orders.ListUnassigned(c.Request.Context())
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Pending orders retrieved", orders)
}

// ListAssignedOrders handles GET /api/staff/orders/assigned
func (h *StaffHandler) ListAssignedOrders(c *gin.Context) {
	orders, err := h.orders.ListAssigned(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Assigned orders retrieved", orders)
}

// AssignOrder handles POST /api/staff/orders/:id/assign
func (h *StaffHandler) AssignOrder(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.Assign(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order assigned", order)
}

// UpdateOrderStatusRequest carries the fulfilment status target
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus handles PUT /api/staff/orders/:id/status
func (h *StaffHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), middleware.GetUserID(c), id, models.OrderStatus(req.Status))
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order status updated", order)
}

// ListPendingReturns handles GET /api/staff/returns/pending
func (h *StaffHandler) ListPendingReturns(c *gin.Context) {
	returns, err := h.returns.ListUnassigned(c.Request.Context())
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Pending returns retrieved", returns)
}

// ListAssignedReturns handles GET /api/staff/returns/assigned
func (h *StaffHandler) ListAssignedReturns(c *gin.Context) {
	returns, err := h.returns.ListAssigned(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Assigned returns retrieved", returns)
}

// AssignReturn handles POST /api/staff/returns/:id/assign
func (h *StaffHandler) AssignReturn(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	ret, err := h.returns.Assign(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Return assigned", ret)
}

// ProcessReturnRequest carries a return verdict
type ProcessReturnRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
	Notes  string `json:"notes"`
}

// ProcessReturn handles PUT /api/staff/returns/:id/process
func (h *StaffHandler) ProcessReturn(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req ProcessReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ret, err := h.returns.Process(c.Request.Context(), middleware.GetUserID(c), id, req.Status == "approved", req.Notes)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	h.metrics.ReturnsProcessed.WithLabelValues(string(ret.Status)).Inc()
	SuccessResponse(c, http.StatusOK, "Return processed", ret)
}
