package service

import (
	"context"
	"sync"
	"time"

	"clabs/internal/config"
	"clabs/internal/external"
	"clabs/internal/metrics"
	"clabs/internal/models"
	"clabs/internal/repository"
)

type EventStore interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]models.Event, error)
}

type RegistrationStore interface {
	CreateWithSeat(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id string) (*models.Registration, error)
	GetByPayment(ctx context.Context, orderID, paymentID string) (*models.Registration, error)
	Transition(ctx context.Context, id string, from, to models.PaymentStatus, releaseSeat bool) error
}

type InboxStore interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
}

type FeedbackStore interface {
	Create(ctx context.Context, fb *models.Feedback) error
}

type Gateway interface {
	CreateOrder(ctx context.Context, req external.OrderRequest) (*external.Order, error)
	RefundPayment(ctx context.Context, paymentID string, req external.RefundRequest) (*external.Refund, error)
}

type Publisher interface {
	Publish(subject string, data any) error
}

type OrderCache interface {
	GetOrder(ctx context.Context, key string) (*models.CreateOrderResponse, error)
	PutOrder(ctx context.Context, key string, order *models.CreateOrderResponse) error
}

type Services struct {
	Events        *EventService
	Orders        *OrderService
	Payments      *PaymentService
	Registrations *RegistrationService
	Feedback      *FeedbackService
	Webhooks      *WebhookService

	backup *inboxBackup
}

// NewServices wires the services. orderCache may be nil.
func NewServices(repos *repository.Repositories, gateway Gateway, publisher Publisher, orderCache OrderCache, m *metrics.Metrics, cfg *config.Config) *Services {
	backup := newInboxBackup(repos.Contact, cfg.InboxBackupTimeout, m)

	return &Services{
		Events:        NewEventService(repos.Events),
		Orders:        NewOrderService(repos.Events, gateway, orderCache, m, cfg.Razorpay),
		Payments:      NewPaymentService(repos.Events, repos.Registrations, backup, publisher, m, cfg.Razorpay.KeySecret),
		Registrations: NewRegistrationService(repos.Events, repos.Registrations, gateway, publisher, m, cfg.Razorpay),
		Feedback:      NewFeedbackService(repos.Events, repos.Feedback),
		Webhooks:      NewWebhookService(publisher, cfg.Razorpay.WebhookSecret),
		backup:        backup,
	}
}

// Wait blocks until detached background work has finished.
func (s *Services) Wait() {
	s.backup.Wait()
}

type inboxBackup struct {
	inbox   InboxStore
	timeout time.Duration
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

func newInboxBackup(inbox InboxStore, timeout time.Duration, m *metrics.Metrics) *inboxBackup {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &inboxBackup{inbox: inbox, timeout: timeout, metrics: m}
}

func (b *inboxBackup) Wait() {
	if b != nil {
		b.wg.Wait()
	}
}
