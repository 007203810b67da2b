package repository

import (
	"context"
	"database/sql"
	"fmt"

	"clabs/internal/database"
	"clabs/internal/models"
)

type RegistrationRepository struct {
	db *database.DB
}

func NewRegistrationRepository(db *database.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const (
	reserveSeatQuery = `
		UPDATE events
		SET available_seats = available_seats - 1, updated_at = NOW()
		WHERE id = $1 AND available_seats > 0`

	releaseSeatQuery = `
		UPDATE events
		SET available_seats = available_seats + 1, updated_at = NOW()
		WHERE id = $1 AND available_seats < total_seats`

	eventExistsQuery = `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`

	registrationColumns = `id, event_id, student_name, guardian_name, institution, class_name,
		       mobile_number, national_id_number, city, state,
		       razorpay_order_id, razorpay_payment_id, razorpay_signature,
		       amount_paid_minor, payment_status, created_at, updated_at`
)

// CreateWithSeat takes one seat of the event and inserts the registration
// in a single transaction. Returns ErrNoSeats, ErrEventNotFound or
// ErrDuplicatePayment; in every error case the seat is not taken.
func (r *RegistrationRepository) CreateWithSeat(ctx context.Context, reg *models.Registration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, reserveSeatQuery, reg.EventID)
	if err != nil {
		return fmt.Errorf("failed to reserve seat: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to reserve seat: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, eventExistsQuery, reg.EventID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check event: %w", err)
		}
		if !exists {
			return ErrEventNotFound
		}
		return ErrNoSeats
	}

	query := `
		INSERT INTO event_registrations (
			id, event_id, student_name, guardian_name, institution, class_name,
			mobile_number, national_id_number, city, state,
			razorpay_order_id, razorpay_payment_id, razorpay_signature,
			amount_paid_minor, payment_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		reg.ID,
		reg.EventID,
		reg.StudentName,
		reg.GuardianName,
		reg.Institution,
		reg.ClassName,
		reg.MobileNumber,
		reg.NationalIDNumber,
		reg.City,
		reg.State,
		reg.OrderID,
		reg.PaymentID,
		reg.Signature,
		reg.AmountPaidMinor,
		reg.PaymentStatus,
	).Scan(&reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicatePayment
		}
		return fmt.Errorf("failed to insert registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}
	return nil
}

func scanRegistration(row interface{ Scan(...any) error }, reg *models.Registration) error {
	return row.Scan(
		&reg.ID,
		&reg.EventID,
		&reg.StudentName,
		&reg.GuardianName,
		&reg.Institution,
		&reg.ClassName,
		&reg.MobileNumber,
		&reg.NationalIDNumber,
		&reg.City,
		&reg.State,
		&reg.OrderID,
		&reg.PaymentID,
		&reg.Signature,
		&reg.AmountPaidMinor,
		&reg.PaymentStatus,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*models.Registration, error) {
	reg := &models.Registration{}
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE id = $1`

	err := scanRegistration(r.db.QueryRowContext(ctx, query, id), reg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *RegistrationRepository) GetByPayment(ctx context.Context, orderID, paymentID string) (*models.Registration, error) {
	reg := &models.Registration{}
	query := `SELECT ` + registrationColumns + `
		FROM event_registrations
		WHERE razorpay_order_id = $1 AND razorpay_payment_id = $2`

	err := scanRegistration(r.db.QueryRowContext(ctx, query, orderID, paymentID), reg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Transition moves a registration from one status to another and, when
// releaseSeat is set, gives its seat back in the same transaction. The
// update is guarded on the current status, so of two concurrent calls only
// one succeeds; the other gets ErrInvalidTransition.
func (r *RegistrationRepository) Transition(ctx context.Context, id string, from, to models.PaymentStatus, releaseSeat bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE event_registrations
		SET payment_status = $3, updated_at = NOW()
		WHERE id = $1 AND payment_status = $2
		RETURNING event_id`

	var eventID int64
	err = tx.QueryRowContext(ctx, query, id, from, to).Scan(&eventID)
	if err == sql.ErrNoRows {
		return ErrInvalidTransition
	}
	if err != nil {
		return fmt.Errorf("failed to update registration status: %w", err)
	}

	if releaseSeat {
		if _, err := tx.ExecContext(ctx, releaseSeatQuery, eventID); err != nil {
			return fmt.Errorf("failed to release seat: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status change: %w", err)
	}
	return nil
}
