package service

import (
	"context"
	"fmt"
	"time"

	apperrors "clabs/internal/errors"
	"clabs/internal/models"
)

type EventService struct {
	eventRepo EventStore
	now       func() time.Time
}

func NewEventService(eventRepo EventStore) *EventService {
	return &EventService{eventRepo: eventRepo, now: time.Now}
}

func (s *EventService) List(ctx context.Context, limit int) (models.ListEventsResponse, error) {
	events, err := s.eventRepo.ListUpcoming(ctx, s.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperrors.NotFound("event %d not found", id)
	}
	return event, nil
}
