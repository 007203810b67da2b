package repository

import (
	"context"

	"clabs/internal/database"
	"clabs/internal/models"
)

type FeedbackRepository struct {
	db *database.DB
}

func NewFeedbackRepository(db *database.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	query := `
		INSERT INTO event_feedback (event_id, name, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		fb.EventID,
		fb.Name,
		fb.Rating,
		fb.Comment,
	).Scan(&fb.ID, &fb.CreatedAt)
}
