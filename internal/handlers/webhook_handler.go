package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/metrics"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/services"
)

// WebhookHandler receives payment provider callbacks
type WebhookHandler struct {
	payments *services.PaymentService
	metrics  *metrics.Metrics
	logger   *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(payments *services.PaymentService, m *metrics.Metrics, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{payments: payments, metrics: m, logger: logger}
}

// paymentWebhookEvent is the provider's event envelope
type paymentWebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

// PaymentWebhook handles POST /api/payments/webhook. The provider retries
// on non-2xx, so anything we cannot act on is acknowledged and logged.
func (h *WebhookHandler) PaymentWebhook(c *gin.Context) {
	var event paymentWebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid webhook payload")
		return
	}
	if event.Data.Object.ID == "" {
		ErrorResponse(c, http.StatusBadRequest, "Missing payment intent id")
		return
	}

	if err := h.payments.HandleWebhook(c.Request.Context(), event.Type, event.Data.Object.ID); err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	if event.Type == "payment_intent.succeeded" {
		h.metrics.PaymentsConfirmed.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
