package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "clabs/internal/errors"
	"clabs/internal/external"
	"clabs/internal/logger"
	"clabs/internal/metrics"
	"clabs/internal/models"

	"github.com/google/uuid"
)

type OrderService struct {
	eventRepo  EventStore
	gateway    Gateway
	orderCache OrderCache
	metrics    *metrics.Metrics
	cfg        external.RazorpayConfig
}

func NewOrderService(eventRepo EventStore, gateway Gateway, orderCache OrderCache, m *metrics.Metrics, cfg external.RazorpayConfig) *OrderService {
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "INR"
	}
	return &OrderService{
		eventRepo:  eventRepo,
		gateway:    gateway,
		orderCache: orderCache,
		metrics:    m,
		cfg:        cfg,
	}
}

// ToMinorUnits converts a major-unit amount, e.g. 499.00 -> 49900.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (s *OrderService) Create(ctx context.Context, req *models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	if req.Amount == nil {
		return nil, apperrors.Validation("amount is required")
	}
	amount := *req.Amount
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, apperrors.Validation("amount must be a positive number")
	}
	amountMinor := ToMinorUnits(amount)
	if amountMinor <= 0 {
		return nil, apperrors.Validation("amount must be at least 0.01")
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	if len(currency) != 3 {
		return nil, apperrors.Validation("currency must be a 3-letter code")
	}

	if !s.cfg.Configured() {
		return nil, apperrors.Configuration("payment gateway credentials are not configured")
	}

	log := logger.WithContext(ctx)

	if req.IdempotencyKey != "" && s.orderCache != nil {
		cached, err := s.orderCache.GetOrder(ctx, req.IdempotencyKey)
		if err != nil {
			log.Warn("Order cache lookup failed", "error", err)
		} else if cached != nil {
			s.metrics.OrderCreated("replayed")
			return cached, nil
		}
	}

	notes := make(map[string]string, len(req.Notes)+1)
	for k, v := range req.Notes {
		notes[k] = v
	}

	if req.EventID != nil {
		event, err := s.eventRepo.GetByID(ctx, *req.EventID)
		if err != nil {
			return nil, fmt.Errorf("failed to get event: %w", err)
		}
		if event == nil {
			return nil, apperrors.NotFound("event %d not found", *req.EventID)
		}
		if event.AvailableSeats <= 0 {
			s.metrics.SeatRejected()
			return nil, apperrors.NoSeats(event.ID)
		}
		notes["event_id"] = strconv.FormatInt(event.ID, 10)
	}

	receipt := strings.TrimSpace(req.Receipt)
	if receipt == "" {
		receipt = "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
	}

	order, err := s.gateway.CreateOrder(ctx, external.OrderRequest{
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		s.metrics.OrderCreated("failed")
		log.Error("Failed to create gateway order", "error", err, "amount_minor", amountMinor, "currency", currency)
		return nil, gatewayError(err)
	}
	s.metrics.OrderCreated("created")

	resp := &models.CreateOrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
	}

	if req.IdempotencyKey != "" && s.orderCache != nil {
		if err := s.orderCache.PutOrder(ctx, req.IdempotencyKey, resp); err != nil {
			log.Warn("Failed to cache order", "error", err, "order_id", order.ID)
		}
	}

	log.Info("Gateway order created", "order_id", order.ID, "amount_minor", order.Amount, "currency", order.Currency)
	return resp, nil
}
