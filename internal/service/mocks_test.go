package service

import (
	"context"
	"sync"
	"time"

	"clabs/internal/external"
	"clabs/internal/models"
	"clabs/internal/repository"

	"github.com/stretchr/testify/mock"
)

type mockEventStore struct{ mock.Mock }

func (m *mockEventStore) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	args := m.Called(ctx, id)
	event, _ := args.Get(0).(*models.Event)
	return event, args.Error(1)
}

func (m *mockEventStore) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]models.Event, error) {
	args := m.Called(ctx, from, limit)
	events, _ := args.Get(0).([]models.Event)
	return events, args.Error(1)
}

type mockRegistrationStore struct{ mock.Mock }

func (m *mockRegistrationStore) CreateWithSeat(ctx context.Context, reg *models.Registration) error {
	return m.Called(ctx, reg).Error(0)
}

func (m *mockRegistrationStore) GetByID(ctx context.Context, id string) (*models.Registration, error) {
	args := m.Called(ctx, id)
	reg, _ := args.Get(0).(*models.Registration)
	return reg, args.Error(1)
}

func (m *mockRegistrationStore) GetByPayment(ctx context.Context, orderID, paymentID string) (*models.Registration, error) {
	args := m.Called(ctx, orderID, paymentID)
	reg, _ := args.Get(0).(*models.Registration)
	return reg, args.Error(1)
}

func (m *mockRegistrationStore) Transition(ctx context.Context, id string, from, to models.PaymentStatus, releaseSeat bool) error {
	return m.Called(ctx, id, from, to, releaseSeat).Error(0)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) CreateOrder(ctx context.Context, req external.OrderRequest) (*external.Order, error) {
	args := m.Called(ctx, req)
	order, _ := args.Get(0).(*external.Order)
	return order, args.Error(1)
}

func (m *mockGateway) RefundPayment(ctx context.Context, paymentID string, req external.RefundRequest) (*external.Refund, error) {
	args := m.Called(ctx, paymentID, req)
	refund, _ := args.Get(0).(*external.Refund)
	return refund, args.Error(1)
}

type mockInbox struct{ mock.Mock }

func (m *mockInbox) Create(ctx context.Context, msg *models.ContactMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type mockFeedbackStore struct{ mock.Mock }

func (m *mockFeedbackStore) Create(ctx context.Context, fb *models.Feedback) error {
	return m.Called(ctx, fb).Error(0)
}

type mockOrderCache struct{ mock.Mock }

func (m *mockOrderCache) GetOrder(ctx context.Context, key string) (*models.CreateOrderResponse, error) {
	args := m.Called(ctx, key)
	order, _ := args.Get(0).(*models.CreateOrderResponse)
	return order, args.Error(1)
}

func (m *mockOrderCache) PutOrder(ctx context.Context, key string, order *models.CreateOrderResponse) error {
	return m.Called(ctx, key, order).Error(0)
}

// recordingPublisher keeps published subjects in order.
type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	records  []models.AuditRecord
}

func (p *recordingPublisher) Publish(subject string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	if record, ok := data.(models.AuditRecord); ok {
		p.records = append(p.records, record)
	}
	return nil
}

func (p *recordingPublisher) Subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

// seatStore is an in-memory store whose seat decrement and insert happen
// under one lock, like the guarded UPDATE in the SQL repository.
type seatStore struct {
	mu            sync.Mutex
	event         models.Event
	registrations map[string]*models.Registration
}

func newSeatStore(event models.Event) *seatStore {
	return &seatStore{event: event, registrations: make(map[string]*models.Registration)}
}

// seatEvents exposes the event side of a seatStore.
type seatEvents struct{ store *seatStore }

func (s *seatStore) events() seatEvents { return seatEvents{store: s} }

func (e seatEvents) GetByID(_ context.Context, id int64) (*models.Event, error) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	if id != e.store.event.ID {
		return nil, nil
	}
	event := e.store.event
	return &event, nil
}

func (e seatEvents) ListUpcoming(context.Context, time.Time, int) ([]models.Event, error) {
	return nil, nil
}

func (s *seatStore) CreateWithSeat(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reg.EventID != s.event.ID {
		return repository.ErrEventNotFound
	}
	if s.event.AvailableSeats <= 0 {
		return repository.ErrNoSeats
	}
	s.event.AvailableSeats--
	s.registrations[reg.ID] = reg
	return nil
}

func (s *seatStore) GetByID(_ context.Context, id string) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok {
		return nil, nil
	}
	cp := *reg
	return &cp, nil
}

func (s *seatStore) GetByPayment(_ context.Context, orderID, paymentID string) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, reg := range s.registrations {
		if reg.OrderID != nil && *reg.OrderID == orderID && reg.PaymentID != nil && *reg.PaymentID == paymentID {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *seatStore) Transition(_ context.Context, id string, from, to models.PaymentStatus, releaseSeat bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok || reg.PaymentStatus != from {
		return repository.ErrInvalidTransition
	}
	reg.PaymentStatus = to
	if releaseSeat && s.event.AvailableSeats < s.event.TotalSeats {
		s.event.AvailableSeats++
	}
	return nil
}

func (s *seatStore) available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.event.AvailableSeats
}
