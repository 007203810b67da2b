package handlers

import (
	"io"
	"net/http"
	"strings"

	apperrors "clabs/internal/errors"
	"clabs/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	IdempotencyKeyHeader   = "Idempotency-Key"
	WebhookSignatureHeader = "X-Razorpay-Signature"

	maxWebhookBody = 1 << 20
)

// CreateOrder - POST /api/orders
// Создает заказ в платежном шлюзе
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	req.IdempotencyKey = strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))

	response, err := h.orders.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// VerifyPayment - POST /api/payments/verify
// Проверяет подпись платежа и сохраняет регистрацию
func (h *Handlers) VerifyPayment(c *gin.Context) {
	var req models.VerifyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := h.payments.Verify(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// PaymentWebhook - POST /api/payments/webhook
// Подпись считается по сырому телу, поэтому JSON здесь не биндим
func (h *Handlers) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respondError(c, apperrors.Validation("failed to read webhook body: %v", err))
		return
	}

	if err := h.webhooks.Handle(c.Request.Context(), body, c.GetHeader(WebhookSignatureHeader)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
