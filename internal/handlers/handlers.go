package handlers

import (
	"context"
	"net/http"

	apperrors "clabs/internal/errors"
	"clabs/internal/logger"
	"clabs/internal/models"
	"clabs/internal/search"
	"clabs/internal/service"

	"github.com/gin-gonic/gin"
)

type EventReader interface {
	List(ctx context.Context, limit int) (models.ListEventsResponse, error)
	Get(ctx context.Context, id int64) (*models.Event, error)
}

type OrderCreator interface {
	Create(ctx context.Context, req *models.CreateOrderRequest) (*models.CreateOrderResponse, error)
}

type PaymentVerifier interface {
	Verify(ctx context.Context, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, error)
}

type Registrar interface {
	Register(ctx context.Context, req *models.CreateRegistrationRequest) (*models.CreateRegistrationResponse, error)
	Cancel(ctx context.Context, id string, req *models.CancelRegistrationRequest) (*models.CancelRegistrationResponse, error)
}

type FeedbackSubmitter interface {
	Submit(ctx context.Context, eventID int64, req *models.CreateFeedbackRequest) (*models.CreateFeedbackResponse, error)
}

type WebhookHandler interface {
	Handle(ctx context.Context, body []byte, signature string) error
}

type AuditSearcher interface {
	Search(ctx context.Context, params search.SearchParams) (*models.PaymentSearchResponse, error)
}

type Handlers struct {
	events        EventReader
	orders        OrderCreator
	payments      PaymentVerifier
	registrations Registrar
	feedback      FeedbackSubmitter
	webhooks      WebhookHandler
	audit         AuditSearcher
}

// NewHandlers собирает обработчики поверх сервисов. audit может быть nil,
// тогда поиск по журналу платежей отвечает 503.
func NewHandlers(services *service.Services, audit AuditSearcher) *Handlers {
	return &Handlers{
		events:        services.Events,
		orders:        services.Orders,
		payments:      services.Payments,
		registrations: services.Registrations,
		feedback:      services.Feedback,
		webhooks:      services.Webhooks,
		audit:         audit,
	}
}

// respondError пишет тело ошибки и статус по классу ошибки
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)

	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal("Internal server error", err)
	}

	log := logger.WithContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "path", c.FullPath(), "code", appErr.Code, "error", err)
	} else {
		log.Info("Request rejected", "path", c.FullPath(), "code", appErr.Code, "error", err)
	}
	_ = c.Error(err)

	message := appErr.Message
	if appErr.Kind == apperrors.KindInternal && appErr.Code == apperrors.CodeInternal {
		// детали внутренних ошибок клиенту не отдаем
		message = "Internal server error"
	}

	body := gin.H{
		"error": message,
		"code":  appErr.Code,
	}
	if appErr.UpstreamCode != "" {
		body["upstreamCode"] = appErr.UpstreamCode
	}
	if appErr.UpstreamDescription != "" {
		body["upstreamDescription"] = appErr.UpstreamDescription
	}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}

	c.JSON(status, body)
}

// bindJSON разбирает тело запроса, отвечая 400 на невалидный JSON
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperrors.Validation("invalid request body: %v", err))
		return false
	}
	return true
}
