package models

// Registrant - данные участника, общие для оплаченной и бесплатной регистрации
type Registrant struct {
	StudentName      string `json:"studentName"`
	GuardianName     string `json:"guardianName"`
	Institution      string `json:"institution"`
	ClassName        string `json:"className"`
	MobileNumber     string `json:"mobileNumber"`
	NationalIDNumber string `json:"nationalIdNumber"`
	City             string `json:"city"`
	State            string `json:"state"`
}

// CreateOrderRequest - запрос на создание заказа в платежном шлюзе
type CreateOrderRequest struct {
	// Amount in major units; a pointer so a missing field is distinguishable from 0.
	Amount   *float64          `json:"amount"`
	Currency string            `json:"currency,omitempty"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
	EventID  *int64            `json:"eventId,omitempty"`

	// IdempotencyKey comes from the Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

// CreateOrderResponse - ответ с идентификатором заказа
type CreateOrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// EventDetails - сведения о мероприятии, переданные клиентом при оплате
type EventDetails struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

// VerifyPaymentRequest - callback платежного шлюза с подписью
type VerifyPaymentRequest struct {
	OrderID      string       `json:"order_id"`
	PaymentID    string       `json:"payment_id"`
	Signature    string       `json:"signature"`
	FormData     Registrant   `json:"formData"`
	EventDetails EventDetails `json:"eventDetails"`
}

// VerifyPaymentResponse - результат проверки платежа
type VerifyPaymentResponse struct {
	Success        bool   `json:"success"`
	PaymentID      string `json:"paymentId"`
	OrderID        string `json:"orderId"`
	RegistrationID string `json:"registrationId"`
}

// CreateRegistrationRequest - регистрация без оплаты
type CreateRegistrationRequest struct {
	EventID int64 `json:"eventId"`
	Registrant
}

// CreateRegistrationResponse - ответ на регистрацию
type CreateRegistrationResponse struct {
	Success        bool   `json:"success"`
	RegistrationID string `json:"registrationId"`
}

// CancelRegistrationRequest - отмена регистрации администратором
type CancelRegistrationRequest struct {
	Reason string `json:"reason"`
}

// CancelRegistrationResponse - итог отмены
type CancelRegistrationResponse struct {
	Success        bool          `json:"success"`
	RegistrationID string        `json:"registrationId"`
	PaymentStatus  PaymentStatus `json:"paymentStatus"`
	RefundID       string        `json:"refundId,omitempty"`
}

// CreateFeedbackRequest - отзыв о мероприятии
type CreateFeedbackRequest struct {
	Name string `json:"name"`
	// Rating is a pointer so a missing rating is rejected rather than read as 0.
	Rating  *int   `json:"rating"`
	Comment string `json:"comment"`
}

// CreateFeedbackResponse - ответ на отзыв
type CreateFeedbackResponse struct {
	Success    bool  `json:"success"`
	FeedbackID int64 `json:"feedbackId"`
}

// ListEventsResponse - список предстоящих мероприятий
type ListEventsResponse []Event

// WebhookEvent - уведомление платежного шлюза
type WebhookEvent struct {
	Entity    string         `json:"entity"`
	AccountID string         `json:"account_id"`
	Event     string         `json:"event"`
	Contains  []string       `json:"contains"`
	Payload   WebhookPayload `json:"payload"`
	CreatedAt int64          `json:"created_at"`
}

type WebhookPayload struct {
	Payment struct {
		Entity WebhookPayment `json:"entity"`
	} `json:"payment"`
}

type WebhookPayment struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

// PaymentSearchResponse - результат поиска по журналу платежей
type PaymentSearchResponse struct {
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	Size    int           `json:"size"`
	Records []AuditRecord `json:"records"`
}
