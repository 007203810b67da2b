package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clabs/internal/database"
	"clabs/internal/models"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, description, event_date, location, price_minor,
		       total_seats, available_seats, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }, event *models.Event) error {
	return row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.EventDate,
		&event.Location,
		&event.PriceMinor,
		&event.TotalSeats,
		&event.AvailableSeats,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
}

// Create inserts a new event with all seats available.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (title, description, event_date, location, price_minor, total_seats, available_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, available_seats, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		event.Title,
		event.Description,
		event.EventDate,
		event.Location,
		event.PriceMinor,
		event.TotalSeats,
	).Scan(&event.ID, &event.AvailableSeats, &event.CreatedAt, &event.UpdatedAt)
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event := &models.Event{}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	err := scanEvent(r.db.QueryRowContext(ctx, query, id), event)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return event, nil
}

// ListUpcoming returns events starting at or after from, soonest first.
func (r *EventRepository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]models.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE event_date >= $1
		ORDER BY event_date ASC, id ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, from, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := scanEvent(rows, &event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// SeatDrift compares the stored counter with total_seats minus active
// (pending or completed) registrations.
type SeatDrift struct {
	EventID             int64
	Title               string
	TotalSeats          int
	AvailableSeats      int
	ActiveRegistrations int
}

func (d SeatDrift) Expected() int {
	expected := d.TotalSeats - d.ActiveRegistrations
	if expected < 0 {
		return 0
	}
	return expected
}

func (d SeatDrift) Drifted() bool {
	return d.Expected() != d.AvailableSeats
}

// SeatDrift reports counters for one event, or all events when eventID is 0.
func (r *EventRepository) SeatDrift(ctx context.Context, eventID int64) ([]SeatDrift, error) {
	query := `
		SELECT e.id, e.title, e.total_seats, e.available_seats,
		       COUNT(r.id) FILTER (WHERE r.payment_status IN ('pending', 'completed'))
		FROM events e
		LEFT JOIN event_registrations r ON r.event_id = e.id
		WHERE $1 = 0 OR e.id = $1
		GROUP BY e.id
		ORDER BY e.id`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SeatDrift
	for rows.Next() {
		var d SeatDrift
		if err := rows.Scan(&d.EventID, &d.Title, &d.TotalSeats, &d.AvailableSeats, &d.ActiveRegistrations); err != nil {
			return nil, err
		}
		result = append(result, d)
	}

	return result, rows.Err()
}

// SetAvailableSeats overwrites the counter. Only the maintenance tool uses it.
func (r *EventRepository) SetAvailableSeats(ctx context.Context, eventID int64, available int) error {
	query := `UPDATE events SET available_seats = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, eventID, available)
	if err != nil {
		return fmt.Errorf("failed to set available seats: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}
