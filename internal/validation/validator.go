package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	apperrors "clabs/internal/errors"
	"clabs/internal/models"
)

// ContractValidator - проверка контракта ошибок работающего API
type ContractValidator struct {
	baseURL string
	client  *http.Client
}

// NewContractValidator создает новый валидатор
func NewContractValidator(baseURL string) *ContractValidator {
	return &ContractValidator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type check struct {
	name       string
	method     string
	path       string
	body       any
	wantStatus int
	wantCode   string
}

func contractChecks() []check {
	amount := -5.0
	rating := 6

	return []check{
		{
			name:       "non-positive order amount",
			method:     http.MethodPost,
			path:       "/api/orders",
			body:       models.CreateOrderRequest{Amount: &amount},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeValidation,
		},
		{
			name:   "forged payment signature",
			method: http.MethodPost,
			path:   "/api/payments/verify",
			body: models.VerifyPaymentRequest{
				OrderID:   "order_contract_check",
				PaymentID: "pay_contract_check",
				Signature: "0000000000000000000000000000000000000000000000000000000000000000",
				FormData: models.Registrant{
					StudentName:  "Contract Check",
					MobileNumber: "9876543210",
				},
				EventDetails: models.EventDetails{ID: 1, Title: "contract check"},
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeSignatureMismatch,
		},
		{
			name:       "missing registrant fields",
			method:     http.MethodPost,
			path:       "/api/registrations",
			body:       models.CreateRegistrationRequest{EventID: 1},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeValidation,
		},
		{
			name:       "feedback rating out of range",
			method:     http.MethodPost,
			path:       "/api/events/1/feedback",
			body:       models.CreateFeedbackRequest{Name: "Contract Check", Rating: &rating},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeValidation,
		},
	}
}

// ValidateAll прогоняет все проверки и возвращает первую найденную ошибку
func (v *ContractValidator) ValidateAll(ctx context.Context) error {
	slog.Info("Validating API error contract", "base_url", v.baseURL)

	for _, c := range contractChecks() {
		if err := v.run(ctx, c); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		slog.Info("Check passed", "check", c.name)
	}

	slog.Info("All checks passed")
	return nil
}

func (v *ContractValidator) run(ctx context.Context, c check) error {
	payload, err := json.Marshal(c.body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, v.baseURL+c.path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != c.wantStatus {
		return fmt.Errorf("%s %s: expected %d, got %d: %s", c.method, c.path, c.wantStatus, resp.StatusCode, raw)
	}

	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return fmt.Errorf("%s %s: failed to decode error body: %w", c.method, c.path, err)
	}
	if body.Error == "" {
		return fmt.Errorf("%s %s: error message is empty", c.method, c.path)
	}
	if body.Code != c.wantCode {
		return fmt.Errorf("%s %s: expected code %s, got %s", c.method, c.path, c.wantCode, body.Code)
	}

	return nil
}
