package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/metrics"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/middleware"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/services"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/storage"
)

// CustomerHandler serves the customer profile, order, payment and return
// endpoints
type CustomerHandler struct {
	users    *services.UserService
	orders   *services.OrderService
	payments *services.PaymentService
	returns  *services.ReturnService
	images   *storage.ImageStore
	metrics  *metrics.Metrics
	logger   *logrus.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(
	users *services.UserService,
	orders *services.OrderService,
	payments *services.PaymentService,
	returns *services.ReturnService,
	images *storage.ImageStore,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *CustomerHandler {
	return &CustomerHandler{
		users:    users,
		orders:   orders,
		payments: payments,
		returns:  returns,
		images:   images,
		metrics:  m,
		logger:   logger,
	}
}

// GetProfile handles GET /api/customer/profile
func (h *CustomerHandler) GetProfile(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile retrieved", user)
}

// UpdateProfileRequest carries the self-service profile fields
type UpdateProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

// UpdateProfile handles PUT /api/customer/profile
func (h *CustomerHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), services.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile updated", user)
}

// UploadProfileImage handles POST /api/customer/profile/image
func (h *CustomerHandler) UploadProfileImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "An image file is required")
		return
	}

	url, err := h.images.Save(header, storage.KindProfile)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.SetProfileImage(c.Request.Context(), middleware.GetUserID(c), url)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile image updated", user)
}

// CheckoutItemRequest is one requested order line
type CheckoutItemRequest struct {
	StockID  uuid.UUID `json:"stock_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

// CheckoutRequest carries the checkout payload
type CheckoutRequest struct {
	Items           []CheckoutItemRequest  `json:"items" binding:"required,min=1,dive"`
	ShippingAddress map[string]interface{} `json:"shipping_address" binding:"required"`
}

// Checkout handles POST /api/customer/orders
func (h *CustomerHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	items := make([]services.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.CheckoutItem{
			StockID:  item.StockID,
			Quantity: item.Quantity,
		})
	}

	order, err := h.orders.Checkout(c.Request.Context(), middleware.GetUserID(c), services.CheckoutInput{
		Items:           items,
		ShippingAddress: models.JSONB(req.ShippingAddress),
	})
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	h.metrics.OrdersCreated.Inc()
	SuccessResponse(c, http.StatusCreated, "Order placed", order)
}

// ListOrders handles GET /api/customer/orders
func (h *CustomerHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListMine(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved", orders)
}

// GetOrder handles GET /api/customer/orders/:id
func (h *CustomerHandler) GetOrder(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetMine(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order retrieved", order)
}

// CancelOrder handles POST /api/customer/orders/:id/cancel
func (h *CustomerHandler) CancelOrder(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order cancelled", order)
}

// CreatePaymentIntent handles POST /api/customer/orders/:id/payment
func (h *CustomerHandler) CreatePaymentIntent(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	intent, err := h.payments.CreateIntent(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Payment intent ready", gin.H{
		"payment_intent_id": intent.ID,
		"client_secret":     intent.ClientSecret,
		"amount":            intent.Amount,
		"currency":          intent.Currency,
	})
}

// ConfirmPayment handles POST /api/customer/orders/:id/payment/confirm
func (h *CustomerHandler) ConfirmPayment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.payments.Confirm(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	h.metrics.PaymentsConfirmed.Inc()
	SuccessResponse(c, http.StatusOK, "Payment confirmed", order)
}

// RequestReturn handles POST /api/customer/returns. The request is
// multipart so an evidence photo can ride along.
func (h *CustomerHandler) RequestReturn(c *gin.Context) {
	orderItemID, err := uuid.Parse(c.PostForm("order_item_id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid order_item_id format")
		return
	}

	input := services.ReturnInput{
		OrderItemID: orderItemID,
		Reason:      c.PostForm("reason"),
	}

	if header, err := c.FormFile("image"); err == nil {
		url, err := h.images.Save(header, storage.KindReturn)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		input.ImageURL = url
	}

	ret, err := h.returns.Request(c.Request.Context(), middleware.GetUserID(c), input)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Return requested", ret)
}

// ListReturns handles GET /api/customer/returns
func (h *CustomerHandler) ListReturns(c *gin.Context) {
	returns, err := h.returns.ListMine(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Returns retrieved", returns)
}
