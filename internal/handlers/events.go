package handlers

import (
	"net/http"
	"strconv"

	apperrors "clabs/internal/errors"
	"clabs/internal/models"

	"github.com/gin-gonic/gin"
)

const maxEventsLimit = 100

// ListEvents - GET /api/events
// Предстоящие мероприятия с оставшимися местами
func (h *Handlers) ListEvents(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > maxEventsLimit {
		respondError(c, apperrors.Validation("limit must be between 1 and %d", maxEventsLimit))
		return
	}

	events, err := h.events.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if events == nil {
		events = models.ListEventsResponse{}
	}

	c.JSON(http.StatusOK, events)
}

// GetEvent - GET /api/events/:id
func (h *Handlers) GetEvent(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	event, err := h.events.Get(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// SubmitFeedback - POST /api/events/:id/feedback
func (h *Handlers) SubmitFeedback(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req models.CreateFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := h.feedback.Submit(c.Request.Context(), eventID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func eventIDParam(c *gin.Context) (int64, bool) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || eventID <= 0 {
		respondError(c, apperrors.Validation("invalid event id %q", c.Param("id")))
		return 0, false
	}
	return eventID, true
}
