package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "clabs/internal/errors"
	"clabs/internal/models"
	"clabs/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEvents struct{ mock.Mock }

func (m *mockEvents) List(ctx context.Context, limit int) (models.ListEventsResponse, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).(models.ListEventsResponse)
	return events, args.Error(1)
}

func (m *mockEvents) Get(ctx context.Context, id int64) (*models.Event, error) {
	args := m.Called(ctx, id)
	event, _ := args.Get(0).(*models.Event)
	return event, args.Error(1)
}

type mockOrders struct{ mock.Mock }

func (m *mockOrders) Create(ctx context.Context, req *models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.CreateOrderResponse)
	return resp, args.Error(1)
}

type mockPayments struct{ mock.Mock }

func (m *mockPayments) Verify(ctx context.Context, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.VerifyPaymentResponse)
	return resp, args.Error(1)
}

type mockRegistrations struct{ mock.Mock }

func (m *mockRegistrations) Register(ctx context.Context, req *models.CreateRegistrationRequest) (*models.CreateRegistrationResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.CreateRegistrationResponse)
	return resp, args.Error(1)
}

func (m *mockRegistrations) Cancel(ctx context.Context, id string, req *models.CancelRegistrationRequest) (*models.CancelRegistrationResponse, error) {
	args := m.Called(ctx, id, req)
	resp, _ := args.Get(0).(*models.CancelRegistrationResponse)
	return resp, args.Error(1)
}

type mockFeedback struct{ mock.Mock }

func (m *mockFeedback) Submit(ctx context.Context, eventID int64, req *models.CreateFeedbackRequest) (*models.CreateFeedbackResponse, error) {
	args := m.Called(ctx, eventID, req)
	resp, _ := args.Get(0).(*models.CreateFeedbackResponse)
	return resp, args.Error(1)
}

type mockWebhooks struct{ mock.Mock }

func (m *mockWebhooks) Handle(ctx context.Context, body []byte, signature string) error {
	return m.Called(ctx, body, signature).Error(0)
}

type mockAudit struct{ mock.Mock }

func (m *mockAudit) Search(ctx context.Context, params search.SearchParams) (*models.PaymentSearchResponse, error) {
	args := m.Called(ctx, params)
	resp, _ := args.Get(0).(*models.PaymentSearchResponse)
	return resp, args.Error(1)
}

type fixture struct {
	events        *mockEvents
	orders        *mockOrders
	payments      *mockPayments
	registrations *mockRegistrations
	feedback      *mockFeedback
	webhooks      *mockWebhooks
	audit         *mockAudit
	router        *gin.Engine
}

func setupRouter(withAudit bool) *fixture {
	gin.SetMode(gin.TestMode)

	f := &fixture{
		events:        &mockEvents{},
		orders:        &mockOrders{},
		payments:      &mockPayments{},
		registrations: &mockRegistrations{},
		feedback:      &mockFeedback{},
		webhooks:      &mockWebhooks{},
		audit:         &mockAudit{},
	}

	h := &Handlers{
		events:        f.events,
		orders:        f.orders,
		payments:      f.payments,
		registrations: f.registrations,
		feedback:      f.feedback,
		webhooks:      f.webhooks,
	}
	if withAudit {
		h.audit = f.audit
	}

	r := gin.New()
	api := r.Group("/api")
	{
		api.POST("/orders", h.CreateOrder)
		api.POST("/payments/verify", h.VerifyPayment)
		api.POST("/payments/webhook", h.PaymentWebhook)
		api.POST("/registrations", h.CreateRegistration)

		events := api.Group("/events")
		{
			events.GET("", h.ListEvents)
			events.GET("/:id", h.GetEvent)
			events.POST("/:id/feedback", h.SubmitFeedback)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/registrations/:id/cancel", h.CancelRegistration)
			admin.GET("/payments", h.SearchPayments)
		}
	}
	f.router = r
	return f
}

func (f *fixture) do(method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCreateOrderPassesIdempotencyKey(t *testing.T) {
	f := setupRouter(false)

	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(req *models.CreateOrderRequest) bool {
		return req.IdempotencyKey == "key-1" && req.Amount != nil && *req.Amount == 500
	})).Return(&models.CreateOrderResponse{OrderID: "order_1", Amount: 50000, Currency: "INR"}, nil)

	w := f.do(http.MethodPost, "/api/orders", []byte(`{"amount":500}`), map[string]string{IdempotencyKeyHeader: " key-1 "})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.CreateOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order_1", resp.OrderID)
	assert.Equal(t, int64(50000), resp.Amount)
	f.orders.AssertExpectations(t)
}

func TestCreateOrderInvalidJSON(t *testing.T) {
	f := setupRouter(false)

	w := f.do(http.MethodPost, "/api/orders", []byte(`{"amount":`), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeValidation, decodeBody(t, w)["code"])
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrderUpstreamError(t *testing.T) {
	f := setupRouter(false)

	f.orders.On("Create", mock.Anything, mock.Anything).
		Return(nil, apperrors.Upstream("BAD_REQUEST_ERROR", "amount too small", errors.New("400")))

	w := f.do(http.MethodPost, "/api/orders", []byte(`{"amount":0.5}`), nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, apperrors.CodeGatewayError, body["code"])
	assert.Equal(t, "BAD_REQUEST_ERROR", body["upstreamCode"])
}

func TestVerifyPaymentSignatureMismatch(t *testing.T) {
	f := setupRouter(false)

	f.payments.On("Verify", mock.Anything, mock.Anything).Return(nil, apperrors.SignatureMismatch())

	req := models.VerifyPaymentRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: "bad"}
	payload, _ := json.Marshal(req)
	w := f.do(http.MethodPost, "/api/payments/verify", payload, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeSignatureMismatch, decodeBody(t, w)["code"])
}

func TestVerifyPaymentPartialFailureCarriesDetails(t *testing.T) {
	f := setupRouter(false)

	partial := apperrors.PartialFailure(apperrors.CodeRegistrationNotSaved, "payment received but registration was not saved", errors.New("db down")).
		WithDetail("order_id", "order_1").
		WithDetail("payment_id", "pay_1")
	f.payments.On("Verify", mock.Anything, mock.Anything).Return(nil, partial)

	w := f.do(http.MethodPost, "/api/payments/verify", []byte(`{"order_id":"order_1","payment_id":"pay_1","signature":"x"}`), nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, apperrors.CodeRegistrationNotSaved, body["code"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "order_1", details["order_id"])
	assert.Equal(t, "pay_1", details["payment_id"])
}

func TestVerifyPaymentSuccess(t *testing.T) {
	f := setupRouter(false)

	f.payments.On("Verify", mock.Anything, mock.MatchedBy(func(req *models.VerifyPaymentRequest) bool {
		return req.FormData.StudentName == "Asha" && req.EventDetails.ID == 7
	})).Return(&models.VerifyPaymentResponse{Success: true, OrderID: "order_1", PaymentID: "pay_1", RegistrationID: "r-1"}, nil)

	payload := []byte(`{"order_id":"order_1","payment_id":"pay_1","signature":"s",
		"formData":{"studentName":"Asha","mobileNumber":"9876543210"},
		"eventDetails":{"id":7,"title":"Robotics","price":500}}`)
	w := f.do(http.MethodPost, "/api/payments/verify", payload, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "r-1", body["registrationId"])
}

func TestPaymentWebhookUsesRawBody(t *testing.T) {
	f := setupRouter(false)

	raw := []byte(`{"event":"payment.captured","payload":{}}`)
	f.webhooks.On("Handle", mock.Anything, raw, "sig").Return(nil)

	w := f.do(http.MethodPost, "/api/payments/webhook", raw, map[string]string{WebhookSignatureHeader: "sig"})

	assert.Equal(t, http.StatusOK, w.Code)
	f.webhooks.AssertExpectations(t)
}

func TestCreateRegistration(t *testing.T) {
	f := setupRouter(false)

	f.registrations.On("Register", mock.Anything, mock.MatchedBy(func(req *models.CreateRegistrationRequest) bool {
		return req.EventID == 3 && req.MobileNumber == "9876543210"
	})).Return(&models.CreateRegistrationResponse{Success: true, RegistrationID: "r-2"}, nil)

	w := f.do(http.MethodPost, "/api/registrations", []byte(`{"eventId":3,"studentName":"Ravi","mobileNumber":"9876543210"}`), nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "r-2", decodeBody(t, w)["registrationId"])
}

func TestCreateRegistrationNoSeats(t *testing.T) {
	f := setupRouter(false)

	f.registrations.On("Register", mock.Anything, mock.Anything).Return(nil, apperrors.NoSeats(3))

	w := f.do(http.MethodPost, "/api/registrations", []byte(`{"eventId":3}`), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeNoSeats, decodeBody(t, w)["code"])
}

func TestListEvents(t *testing.T) {
	f := setupRouter(false)

	f.events.On("List", mock.Anything, 20).Return(models.ListEventsResponse{{ID: 1, Title: "Robotics", AvailableSeats: 4}}, nil)

	w := f.do(http.MethodGet, "/api/events", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var events []models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, 4, events[0].AvailableSeats)
}

func TestListEventsEmptyIsArray(t *testing.T) {
	f := setupRouter(false)

	f.events.On("List", mock.Anything, 5).Return(nil, nil)

	w := f.do(http.MethodGet, "/api/events?limit=5", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListEventsBadLimit(t *testing.T) {
	f := setupRouter(false)

	w := f.do(http.MethodGet, "/api/events?limit=1000", nil, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetEventNotFound(t *testing.T) {
	f := setupRouter(false)

	f.events.On("Get", mock.Anything, int64(42)).Return(nil, apperrors.NotFound("event %d not found", 42))

	w := f.do(http.MethodGet, "/api/events/42", nil, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CodeNotFound, decodeBody(t, w)["code"])
}

func TestGetEventInvalidID(t *testing.T) {
	f := setupRouter(false)

	w := f.do(http.MethodGet, "/api/events/abc", nil, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.events.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSubmitFeedback(t *testing.T) {
	f := setupRouter(false)

	f.feedback.On("Submit", mock.Anything, int64(9), mock.MatchedBy(func(req *models.CreateFeedbackRequest) bool {
		return req.Rating != nil && *req.Rating == 5
	})).Return(&models.CreateFeedbackResponse{Success: true, FeedbackID: 11}, nil)

	w := f.do(http.MethodPost, "/api/events/9/feedback", []byte(`{"name":"Meena","rating":5,"comment":"great"}`), nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(11), decodeBody(t, w)["feedbackId"])
}

func TestCancelRegistration(t *testing.T) {
	f := setupRouter(false)

	id := "0b6c3f3e-8d4c-4a36-9f0e-1f6f7f1c2a11"
	f.registrations.On("Cancel", mock.Anything, id, mock.MatchedBy(func(req *models.CancelRegistrationRequest) bool {
		return req.Reason == "duplicate"
	})).Return(&models.CancelRegistrationResponse{
		Success:        true,
		RegistrationID: id,
		PaymentStatus:  models.PaymentStatusRefunded,
		RefundID:       "rfnd_1",
	}, nil)

	w := f.do(http.MethodPost, "/api/admin/registrations/"+id+"/cancel", []byte(`{"reason":"duplicate"}`), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "refunded", body["paymentStatus"])
	assert.Equal(t, "rfnd_1", body["refundId"])
}

func TestCancelRegistrationConflict(t *testing.T) {
	f := setupRouter(false)

	id := "0b6c3f3e-8d4c-4a36-9f0e-1f6f7f1c2a11"
	f.registrations.On("Cancel", mock.Anything, id, mock.Anything).
		Return(nil, apperrors.InvalidTransition("refunded", "refunded"))

	w := f.do(http.MethodPost, "/api/admin/registrations/"+id+"/cancel", nil, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCancelRegistrationInvalidID(t *testing.T) {
	f := setupRouter(false)

	w := f.do(http.MethodPost, "/api/admin/registrations/not-a-uuid/cancel", nil, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchPaymentsWithoutIndex(t *testing.T) {
	f := setupRouter(false)

	w := f.do(http.MethodGet, "/api/admin/payments", nil, nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, apperrors.CodeUnavailable, decodeBody(t, w)["code"])
}

func TestSearchPayments(t *testing.T) {
	f := setupRouter(true)

	f.audit.On("Search", mock.Anything, search.SearchParams{Query: "order_1", Type: "payment.rejected", Page: 2, Size: 10}).
		Return(&models.PaymentSearchResponse{Total: 1, Page: 2, Size: 10, Records: []models.AuditRecord{{Type: "payment.rejected", OrderID: "order_1"}}}, nil)

	w := f.do(http.MethodGet, "/api/admin/payments?query=order_1&type=payment.rejected&page=2&size=10", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.PaymentSearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, "order_1", resp.Records[0].OrderID)
}

func TestInternalErrorHidesCause(t *testing.T) {
	f := setupRouter(false)

	f.events.On("List", mock.Anything, 20).Return(nil, errors.New("pq: connection refused"))

	w := f.do(http.MethodGet, "/api/events", nil, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, apperrors.CodeInternal, body["code"])
	assert.NotContains(t, body["error"], "connection refused")
}
