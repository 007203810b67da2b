package repository

import (
	"context"

	"clabs/internal/database"
	"clabs/internal/models"
)

// ContactRepository - входящие сообщения (таблица contact)
type ContactRepository struct {
	db *database.DB
}

func NewContactRepository(db *database.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	query := `
		INSERT INTO contact (name, email, phone, subject, message, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		msg.Name,
		msg.Email,
		msg.Phone,
		msg.Subject,
		msg.Message,
		msg.Source,
	).Scan(&msg.ID, &msg.CreatedAt)
}
