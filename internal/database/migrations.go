package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createEventsTable,
		createRegistrationsTable,
		createRegistrationsEventIndex,
		createContactTable,
		createFeedbackTable,
		createEventsDateIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id BIGSERIAL PRIMARY KEY,
    title VARCHAR(500) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    event_date TIMESTAMPTZ NOT NULL,
    location VARCHAR(500) NOT NULL DEFAULT '',
    price_minor BIGINT NOT NULL DEFAULT 0,
    total_seats INTEGER NOT NULL DEFAULT 0,
    available_seats INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (price_minor >= 0),
    CHECK (available_seats >= 0 AND available_seats <= total_seats)
);`

const createRegistrationsTable = `
CREATE TABLE IF NOT EXISTS event_registrations (
    id UUID PRIMARY KEY,
    event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE RESTRICT,
    student_name VARCHAR(255) NOT NULL,
    guardian_name VARCHAR(255) NOT NULL DEFAULT '',
    institution VARCHAR(255) NOT NULL DEFAULT '',
    class_name VARCHAR(50) NOT NULL DEFAULT '',
    mobile_number VARCHAR(20) NOT NULL,
    national_id_number VARCHAR(20) NOT NULL DEFAULT '',
    city VARCHAR(100) NOT NULL DEFAULT '',
    state VARCHAR(100) NOT NULL DEFAULT '',
    razorpay_order_id VARCHAR(64),
    razorpay_payment_id VARCHAR(64),
    razorpay_signature VARCHAR(128),
    amount_paid_minor BIGINT NOT NULL DEFAULT 0,
    payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    UNIQUE (razorpay_order_id, razorpay_payment_id),
    CHECK (payment_status IN ('pending', 'completed', 'failed', 'refunded'))
);`

const createRegistrationsEventIndex = `
CREATE INDEX IF NOT EXISTS event_registrations_event_status_idx
ON event_registrations (event_id, payment_status);`

const createContactTable = `
CREATE TABLE IF NOT EXISTS contact (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) NOT NULL DEFAULT '',
    phone VARCHAR(20) NOT NULL DEFAULT '',
    subject VARCHAR(500) NOT NULL DEFAULT '',
    message TEXT NOT NULL,
    source VARCHAR(50) NOT NULL DEFAULT 'website',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createFeedbackTable = `
CREATE TABLE IF NOT EXISTS event_feedback (
    id BIGSERIAL PRIMARY KEY,
    event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    name VARCHAR(255) NOT NULL DEFAULT '',
    rating SMALLINT NOT NULL,
    comment TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (rating BETWEEN 1 AND 5)
);`

const createEventsDateIndex = `
CREATE INDEX IF NOT EXISTS events_event_date_idx
ON events (event_date);`
