package repository

import (
	"errors"

	"clabs/internal/database"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrNoSeats              = errors.New("no seats available")
	ErrDuplicatePayment     = errors.New("registration for this payment already exists")
	ErrInvalidTransition    = errors.New("registration status changed concurrently")
)

type Repositories struct {
	Events        *EventRepository
	Registrations *RegistrationRepository
	Contact       *ContactRepository
	Feedback      *FeedbackRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Events:        NewEventRepository(db),
		Registrations: NewRegistrationRepository(db),
		Contact:       NewContactRepository(db),
		Feedback:      NewFeedbackRepository(db),
	}
}
