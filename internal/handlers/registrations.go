package handlers

import (
	"net/http"
	"strconv"

	apperrors "clabs/internal/errors"
	"clabs/internal/models"
	"clabs/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateRegistration - POST /api/registrations
// Регистрация на бесплатное мероприятие
func (h *Handlers) CreateRegistration(c *gin.Context) {
	var req models.CreateRegistrationRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := h.registrations.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// CancelRegistration - POST /api/admin/registrations/:id/cancel
// Отмена регистрации с возвратом платежа и освобождением места
func (h *Handlers) CancelRegistration(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(c, apperrors.Validation("invalid registration id %q", id))
		return
	}

	var req models.CancelRegistrationRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	response, err := h.registrations.Cancel(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchPayments - GET /api/admin/payments
// Поиск по журналу платежей в Elasticsearch
func (h *Handlers) SearchPayments(c *gin.Context) {
	if h.audit == nil {
		respondError(c, apperrors.Unavailable("payment audit search is not configured"))
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		respondError(c, apperrors.Validation("page must be >= 1"))
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size < 1 {
		respondError(c, apperrors.Validation("size must be >= 1"))
		return
	}

	response, err := h.audit.Search(c.Request.Context(), search.SearchParams{
		Query:  c.Query("query"),
		Type:   c.Query("type"),
		Status: c.Query("status"),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
