package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clabs/internal/database"
	apperrors "clabs/internal/errors"
	"clabs/internal/external"
	"clabs/internal/logger"
	"clabs/internal/metrics"
	"clabs/internal/models"
	"clabs/internal/repository"

	"github.com/google/uuid"
)

type PaymentService struct {
	eventRepo        EventStore
	registrationRepo RegistrationStore
	backup           *inboxBackup
	publisher        Publisher
	metrics          *metrics.Metrics
	keySecret        string
}

func NewPaymentService(eventRepo EventStore, registrationRepo RegistrationStore, backup *inboxBackup, publisher Publisher, m *metrics.Metrics, keySecret string) *PaymentService {
	return &PaymentService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		backup:           backup,
		publisher:        publisher,
		metrics:          m,
		keySecret:        keySecret,
	}
}

// Verify checks the gateway signature and records a completed registration.
// Failures after a valid signature are reported as a partial failure so a
// charged but unregistered payment can be reconciled by hand.
func (s *PaymentService) Verify(ctx context.Context, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, error) {
	orderID := strings.TrimSpace(req.OrderID)
	paymentID := strings.TrimSpace(req.PaymentID)
	signature := strings.TrimSpace(req.Signature)

	if orderID == "" || paymentID == "" || signature == "" {
		return nil, apperrors.Validation("order_id, payment_id and signature are required")
	}
	if req.EventDetails.ID <= 0 {
		return nil, apperrors.Validation("eventDetails.id is required")
	}

	registrant, err := normalizeRegistrant(req.FormData)
	if err != nil {
		return nil, err
	}

	if s.keySecret == "" {
		return nil, apperrors.Configuration("payment gateway credentials are not configured")
	}

	log := logger.WithContext(ctx).With("order_id", orderID, "payment_id", paymentID)

	if !external.VerifyPaymentSignature(s.keySecret, orderID, paymentID, signature) {
		s.metrics.VerificationResult(metrics.ResultRejected)
		log.Warn("Payment signature mismatch, possible forged callback", "event_id", req.EventDetails.ID)
		publish(ctx, s.publisher, models.EventPaymentRejected, models.AuditRecord{
			EventID:      req.EventDetails.ID,
			OrderID:      orderID,
			PaymentID:    paymentID,
			MobileNumber: registrant.MobileNumber,
			Reason:       "signature mismatch",
			ErrorCode:    apperrors.CodeSignatureMismatch,
		})
		return nil, apperrors.SignatureMismatch()
	}

	existing, err := s.registrationRepo.GetByPayment(ctx, orderID, paymentID)
	if err != nil {
		return nil, s.unreconciled(ctx, orderID, paymentID, req.EventDetails.ID, "registration lookup failed", err)
	}
	if existing != nil {
		s.metrics.VerificationResult(metrics.ResultReplayed)
		log.Info("Payment already verified, returning existing registration", "registration_id", existing.ID)
		return verifiedResponse(orderID, paymentID, existing.ID), nil
	}

	event, err := s.eventRepo.GetByID(ctx, req.EventDetails.ID)
	if err != nil {
		return nil, s.unreconciled(ctx, orderID, paymentID, req.EventDetails.ID, "event lookup failed", err)
	}
	if event == nil {
		return nil, s.unreconciled(ctx, orderID, paymentID, req.EventDetails.ID, "event does not exist", repository.ErrEventNotFound)
	}

	if req.EventDetails.Price > 0 && ToMinorUnits(req.EventDetails.Price) != event.PriceMinor {
		log.Warn("Client event price differs from stored price",
			"client_price_minor", ToMinorUnits(req.EventDetails.Price),
			"stored_price_minor", event.PriceMinor)
	}

	reg := newRegistration(uuid.NewString(), event.ID, registrant)
	reg.OrderID = &orderID
	reg.PaymentID = &paymentID
	reg.Signature = &signature
	reg.AmountPaidMinor = event.PriceMinor
	reg.PaymentStatus = models.PaymentStatusCompleted

	if err := s.registrationRepo.CreateWithSeat(ctx, reg); err != nil {
		if errors.Is(err, repository.ErrDuplicatePayment) {
			// A concurrent verification of the same payment won the insert.
			if winner, lookupErr := s.registrationRepo.GetByPayment(ctx, orderID, paymentID); lookupErr == nil && winner != nil {
				s.metrics.VerificationResult(metrics.ResultReplayed)
				return verifiedResponse(orderID, paymentID, winner.ID), nil
			}
		}
		if errors.Is(err, repository.ErrNoSeats) {
			s.metrics.SeatRejected()
		}
		return nil, s.unreconciled(ctx, orderID, paymentID, event.ID, "registration not saved", err)
	}

	s.metrics.VerificationResult(metrics.ResultVerified)
	s.metrics.RegistrationStored(string(reg.PaymentStatus))
	log.Info("Payment verified and registration saved", "registration_id", reg.ID, "event_id", event.ID)

	publish(ctx, s.publisher, models.EventRegistrationCompleted, models.AuditRecord{
		RegistrationID: reg.ID,
		EventID:        event.ID,
		OrderID:        orderID,
		PaymentID:      paymentID,
		AmountMinor:    reg.AmountPaidMinor,
		Status:         reg.PaymentStatus,
		StudentName:    reg.StudentName,
		MobileNumber:   reg.MobileNumber,
	})

	s.backup.file(ctx, reg, event.Title)

	return verifiedResponse(orderID, paymentID, reg.ID), nil
}

func verifiedResponse(orderID, paymentID, registrationID string) *models.VerifyPaymentResponse {
	return &models.VerifyPaymentResponse{
		Success:        true,
		PaymentID:      paymentID,
		OrderID:        orderID,
		RegistrationID: registrationID,
	}
}

func (s *PaymentService) unreconciled(ctx context.Context, orderID, paymentID string, eventID int64, reason string, cause error) error {
	s.metrics.VerificationResult(metrics.ResultUnreconciled)
	logger.WithContext(ctx).Error("Payment verified but registration not saved, manual reconciliation required",
		append([]any{"order_id", orderID, "payment_id", paymentID, "event_id", eventID, "reason", reason},
			database.LogFields(cause)...)...)

	publish(ctx, s.publisher, models.EventPaymentUnreconciled, models.AuditRecord{
		EventID:   eventID,
		OrderID:   orderID,
		PaymentID: paymentID,
		Reason:    reason,
		ErrorCode: apperrors.CodeRegistrationNotSaved,
	})

	return apperrors.PartialFailure(apperrors.CodeRegistrationNotSaved,
		fmt.Sprintf("payment verified but registration not saved: %s", reason), cause).
		WithDetail("order_id", orderID).
		WithDetail("payment_id", paymentID)
}
