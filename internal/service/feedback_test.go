package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	apperrors "clabs/internal/errors"
	"clabs/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestFeedbackRatingOutOfRangeScenarioE(t *testing.T) {
	for _, rating := range []*int{intPtr(6), intPtr(0), intPtr(-1), nil} {
		events := new(mockEventStore)
		store := new(mockFeedbackStore)
		svc := NewFeedbackService(events, store)

		_, err := svc.Submit(context.Background(), 7, &models.CreateFeedbackRequest{Name: "Asha", Rating: rating})
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))

		events.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	}
}

func TestFeedbackStored(t *testing.T) {
	events := new(mockEventStore)
	events.On("GetByID", mock.Anything, int64(7)).Return(&models.Event{ID: 7}, nil)
	store := new(mockFeedbackStore)
	store.On("Create", mock.Anything, mock.MatchedBy(func(fb *models.Feedback) bool {
		return fb.EventID == 7 && fb.Rating == 5 && fb.Comment == "Loved the robots"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Feedback).ID = 11
	}).Return(nil)

	svc := NewFeedbackService(events, store)

	resp, err := svc.Submit(context.Background(), 7, &models.CreateFeedbackRequest{Name: "Asha", Rating: intPtr(5), Comment: " Loved the robots "})
	require.NoError(t, err)
	assert.Equal(t, int64(11), resp.FeedbackID)
	store.AssertExpectations(t)
}

func TestFeedbackUnknownEvent(t *testing.T) {
	events := new(mockEventStore)
	events.On("GetByID", mock.Anything, int64(8)).Return(nil, nil)
	store := new(mockFeedbackStore)

	svc := NewFeedbackService(events, store)

	_, err := svc.Submit(context.Background(), 8, &models.CreateFeedbackRequest{Rating: intPtr(4)})
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(err))
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFeedbackCommentTooLong(t *testing.T) {
	svc := NewFeedbackService(new(mockEventStore), new(mockFeedbackStore))

	_, err := svc.Submit(context.Background(), 7, &models.CreateFeedbackRequest{Rating: intPtr(3), Comment: strings.Repeat("x", maxCommentLength+1)})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
