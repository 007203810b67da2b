package external

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when key id or key secret is missing.
var ErrNotConfigured = errors.New("razorpay credentials are not configured")

type RazorpayConfig struct {
	BaseURL         string
	KeyID           string
	KeySecret       string
	WebhookSecret   string
	DefaultCurrency string
	Timeout         time.Duration
}

// Configured reports whether both API credentials are present.
func (c RazorpayConfig) Configured() bool {
	return c.KeyID != "" && c.KeySecret != ""
}

type RazorpayClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

// Razorpay gateway models, see https://razorpay.com/docs/api/orders/
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type Order struct {
	ID        string            `json:"id"`
	Entity    string            `json:"entity"`
	Amount    int64             `json:"amount"`
	AmountDue int64             `json:"amount_due"`
	Currency  string            `json:"currency"`
	Receipt   string            `json:"receipt"`
	Status    string            `json:"status"`
	Notes     map[string]string `json:"notes"`
	CreatedAt int64             `json:"created_at"`
}

type RefundRequest struct {
	// Amount in minor units; zero refunds the full payment.
	Amount int64             `json:"amount,omitempty"`
	Notes  map[string]string `json:"notes,omitempty"`
}

type Refund struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// GatewayError is the error envelope Razorpay answers with on failure.
type GatewayError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Reason      string `json:"reason,omitempty"`
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("razorpay: %s (%s, http %d)", e.Description, e.Code, e.StatusCode)
}

func NewRazorpayClient(cfg RazorpayConfig) *RazorpayClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &RazorpayClient{
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (rc *RazorpayClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	var order Order
	if err := rc.post(ctx, "/v1/orders", req, &order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return &order, nil
}

func (rc *RazorpayClient) RefundPayment(ctx context.Context, paymentID string, req RefundRequest) (*Refund, error) {
	var refund Refund
	if err := rc.post(ctx, "/v1/payments/"+paymentID+"/refund", req, &refund); err != nil {
		return nil, fmt.Errorf("failed to refund payment %s: %w", paymentID, err)
	}
	return &refund, nil
}

func (rc *RazorpayClient) post(ctx context.Context, path string, body, out any) error {
	if rc.keyID == "" || rc.keySecret == "" {
		return ErrNotConfigured
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, rc.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(rc.keyID, rc.keySecret)

	resp, err := rc.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeGatewayError(resp.StatusCode, payload)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeGatewayError(status int, payload []byte) *GatewayError {
	var envelope struct {
		Error GatewayError `json:"error"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.Error.Code == "" {
		return &GatewayError{
			StatusCode:  status,
			Code:        "HTTP_" + http.StatusText(status),
			Description: fmt.Sprintf("unexpected status code: %d", status),
		}
	}
	envelope.Error.StatusCode = status
	return &envelope.Error
}

// PaymentSignature computes hex(HMAC_SHA256(secret, orderID + "|" + paymentID)),
// the value Razorpay Checkout hands back as razorpay_signature.
func PaymentSignature(secret, orderID, paymentID string) string {
	return sign(secret, []byte(orderID+"|"+paymentID))
}

// VerifyPaymentSignature reports whether signature matches exactly. The
// comparison is case-sensitive and runs in constant time.
func VerifyPaymentSignature(secret, orderID, paymentID, signature string) bool {
	expected := PaymentSignature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// WebhookSignature computes the X-Razorpay-Signature of a raw webhook body.
func WebhookSignature(secret string, body []byte) string {
	return sign(secret, body)
}

func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	return hmac.Equal([]byte(WebhookSignature(secret, body)), []byte(signature))
}

func sign(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
