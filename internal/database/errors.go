package database

import (
	"errors"

	"github.com/lib/pq"
)

const (
	codeUniqueViolation pq.ErrorCode = "23505"
	codeCheckViolation  pq.ErrorCode = "23514"
)

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation
}

// IsCheckViolation reports whether err is a Postgres CHECK constraint failure.
func IsCheckViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeCheckViolation
}

// LogFields returns the server-side message, code and hint of a Postgres
// error as slog key/value pairs. Other errors yield only "error".
func LogFields(err error) []any {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return []any{"error", err}
	}
	return []any{
		"error", err,
		"db_message", pqErr.Message,
		"db_code", string(pqErr.Code),
		"db_hint", pqErr.Hint,
		"db_constraint", pqErr.Constraint,
	}
}
