package service

import (
	"context"
	"encoding/json"

	apperrors "clabs/internal/errors"
	"clabs/internal/external"
	"clabs/internal/logger"
	"clabs/internal/models"
)

type WebhookService struct {
	publisher Publisher
	secret    string
}

func NewWebhookService(publisher Publisher, secret string) *WebhookService {
	return &WebhookService{publisher: publisher, secret: secret}
}

// Handle authenticates a gateway webhook and forwards payment outcomes to
// the audit trail. Unknown event types are acknowledged and ignored.
func (s *WebhookService) Handle(ctx context.Context, body []byte, signature string) error {
	if s.secret == "" {
		return apperrors.Configuration("webhook secret is not configured")
	}

	log := logger.WithContext(ctx)

	if !external.VerifyWebhookSignature(s.secret, body, signature) {
		log.Warn("Webhook signature mismatch", "body_bytes", len(body))
		return apperrors.SignatureMismatch()
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperrors.Validation("invalid webhook payload")
	}

	payment := event.Payload.Payment.Entity
	record := models.AuditRecord{
		OrderID:     payment.OrderID,
		PaymentID:   payment.ID,
		AmountMinor: payment.Amount,
		Currency:    payment.Currency,
	}

	switch event.Event {
	case models.EventPaymentFailed:
		record.Reason = payment.ErrorDescription
		record.ErrorCode = payment.ErrorCode
		record.Status = models.PaymentStatusFailed
		log.Info("Payment failed at gateway", "order_id", payment.OrderID, "payment_id", payment.ID, "error_code", payment.ErrorCode)
		publish(ctx, s.publisher, models.EventPaymentFailed, record)
	case models.EventPaymentCaptured:
		record.Status = models.PaymentStatusCompleted
		publish(ctx, s.publisher, models.EventPaymentCaptured, record)
	default:
		log.Debug("Ignoring webhook event", "event", event.Event)
	}

	return nil
}
