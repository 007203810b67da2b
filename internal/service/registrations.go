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

type RegistrationService struct {
	eventRepo        EventStore
	registrationRepo RegistrationStore
	gateway          Gateway
	publisher        Publisher
	metrics          *metrics.Metrics
	cfg              external.RazorpayConfig
}

func NewRegistrationService(eventRepo EventStore, registrationRepo RegistrationStore, gateway Gateway, publisher Publisher, m *metrics.Metrics, cfg external.RazorpayConfig) *RegistrationService {
	return &RegistrationService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		gateway:          gateway,
		publisher:        publisher,
		metrics:          m,
		cfg:              cfg,
	}
}

// Register creates a registration without payment. The seat is taken by
// the guarded decrement inside the insert transaction; the read beforehand
// only gives a fast answer for events that are already full.
func (s *RegistrationService) Register(ctx context.Context, req *models.CreateRegistrationRequest) (*models.CreateRegistrationResponse, error) {
	if req.EventID <= 0 {
		return nil, apperrors.Validation("eventId is required")
	}

	registrant, err := normalizeRegistrant(req.Registrant)
	if err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperrors.NotFound("event %d not found", req.EventID)
	}
	if event.AvailableSeats <= 0 {
		s.metrics.SeatRejected()
		return nil, apperrors.NoSeats(event.ID)
	}

	reg := newRegistration(uuid.NewString(), event.ID, registrant)
	reg.PaymentStatus = models.PaymentStatusPending

	if err := s.registrationRepo.CreateWithSeat(ctx, reg); err != nil {
		switch {
		case errors.Is(err, repository.ErrNoSeats):
			s.metrics.SeatRejected()
			return nil, apperrors.NoSeats(event.ID)
		case errors.Is(err, repository.ErrEventNotFound):
			return nil, apperrors.NotFound("event %d not found", event.ID)
		}
		logger.WithContext(ctx).Error("Failed to save registration",
			append(database.LogFields(err), "event_id", event.ID)...)
		return nil, apperrors.Internal("failed to save registration", err)
	}

	s.metrics.RegistrationStored(string(reg.PaymentStatus))
	logger.WithContext(ctx).Info("Registration created", "registration_id", reg.ID, "event_id", event.ID)

	return &models.CreateRegistrationResponse{Success: true, RegistrationID: reg.ID}, nil
}

// Cancel gives the seat of a registration back. A pending registration
// becomes failed; a completed one is refunded through the gateway first
// and then becomes refunded.
func (s *RegistrationService) Cancel(ctx context.Context, id string, req *models.CancelRegistrationRequest) (*models.CancelRegistrationResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.Validation("registration id must be a UUID")
	}

	reg, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	if reg == nil {
		return nil, apperrors.NotFound("registration %s not found", id)
	}

	reason := strings.TrimSpace(req.Reason)
	log := logger.WithContext(ctx).With("registration_id", reg.ID, "event_id", reg.EventID)

	resp := &models.CancelRegistrationResponse{Success: true, RegistrationID: reg.ID}

	switch reg.PaymentStatus {
	case models.PaymentStatusPending:
		if err := s.transition(ctx, reg, models.PaymentStatusFailed); err != nil {
			return nil, err
		}
		resp.PaymentStatus = models.PaymentStatusFailed

	case models.PaymentStatusCompleted:
		if reg.PaymentID == nil || *reg.PaymentID == "" {
			return nil, apperrors.InvalidTransition(string(reg.PaymentStatus), string(models.PaymentStatusRefunded))
		}
		if !s.cfg.Configured() {
			return nil, apperrors.Configuration("payment gateway credentials are not configured")
		}

		refund, err := s.gateway.RefundPayment(ctx, *reg.PaymentID, external.RefundRequest{
			Notes: map[string]string{"registration_id": reg.ID, "reason": reason},
		})
		if err != nil {
			log.Error("Refund failed", "error", err, "payment_id", *reg.PaymentID)
			return nil, gatewayError(err)
		}
		resp.RefundID = refund.ID

		if err := s.transition(ctx, reg, models.PaymentStatusRefunded); err != nil {
			if apperrors.IsKind(err, apperrors.KindConflict) {
				return nil, err
			}
			log.Error("Payment refunded but registration status not updated",
				"error", err, "refund_id", refund.ID, "payment_id", *reg.PaymentID)
			return nil, apperrors.PartialFailure(apperrors.CodeRefundNotRecorded,
				"payment refunded but registration not updated", err).
				WithDetail("registration_id", reg.ID).
				WithDetail("refund_id", refund.ID)
		}
		resp.PaymentStatus = models.PaymentStatusRefunded

	default:
		return nil, apperrors.InvalidTransition(string(reg.PaymentStatus), "cancelled")
	}

	log.Info("Registration cancelled", "status", resp.PaymentStatus, "refund_id", resp.RefundID)

	publish(ctx, s.publisher, models.EventRegistrationCancelled, models.AuditRecord{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		OrderID:        derefString(reg.OrderID),
		PaymentID:      derefString(reg.PaymentID),
		AmountMinor:    reg.AmountPaidMinor,
		Status:         resp.PaymentStatus,
		Reason:         reason,
	})

	return resp, nil
}

func (s *RegistrationService) transition(ctx context.Context, reg *models.Registration, to models.PaymentStatus) error {
	if !reg.PaymentStatus.CanTransitionTo(to) {
		return apperrors.InvalidTransition(string(reg.PaymentStatus), string(to))
	}

	err := s.registrationRepo.Transition(ctx, reg.ID, reg.PaymentStatus, to, true)
	if errors.Is(err, repository.ErrInvalidTransition) {
		return apperrors.InvalidTransition(string(reg.PaymentStatus), string(to))
	}
	if err != nil {
		return fmt.Errorf("failed to change registration status: %w", err)
	}
	return nil
}
