package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "clabs/internal/errors"
	"clabs/internal/models"
)

const (
	minRating        = 1
	maxRating        = 5
	maxCommentLength = 2000
)

type FeedbackService struct {
	eventRepo    EventStore
	feedbackRepo FeedbackStore
}

func NewFeedbackService(eventRepo EventStore, feedbackRepo FeedbackStore) *FeedbackService {
	return &FeedbackService{eventRepo: eventRepo, feedbackRepo: feedbackRepo}
}

func (s *FeedbackService) Submit(ctx context.Context, eventID int64, req *models.CreateFeedbackRequest) (*models.CreateFeedbackResponse, error) {
	if eventID <= 0 {
		return nil, apperrors.Validation("event id must be positive")
	}
	if req.Rating == nil {
		return nil, apperrors.Validation("rating is required")
	}
	if *req.Rating < minRating || *req.Rating > maxRating {
		return nil, apperrors.Validation("rating must be between %d and %d", minRating, maxRating)
	}

	comment := strings.TrimSpace(req.Comment)
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return nil, apperrors.Validation("comment must be at most %d characters", maxCommentLength)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperrors.NotFound("event %d not found", eventID)
	}

	fb := &models.Feedback{
		EventID: eventID,
		Name:    strings.TrimSpace(req.Name),
		Rating:  *req.Rating,
		Comment: comment,
	}
	if err := s.feedbackRepo.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	return &models.CreateFeedbackResponse{Success: true, FeedbackID: fb.ID}, nil
}
