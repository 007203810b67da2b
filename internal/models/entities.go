package models

import "time"

// PaymentStatus - статус оплаты регистрации
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// CanTransitionTo reports whether the state machine allows s -> next.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return next == PaymentStatusCompleted || next == PaymentStatusFailed
	case PaymentStatusCompleted:
		return next == PaymentStatusRefunded
	default:
		return false
	}
}

// Event - мероприятие (программа) с ограниченным количеством мест
type Event struct {
	ID             int64     `json:"id" db:"id"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description" db:"description"`
	EventDate      time.Time `json:"eventDate" db:"event_date"`
	Location       string    `json:"location" db:"location"`
	PriceMinor     int64     `json:"priceMinor" db:"price_minor"`
	TotalSeats     int       `json:"totalSeats" db:"total_seats"`
	AvailableSeats int       `json:"availableSeats" db:"available_seats"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// Registration - запись участника на мероприятие
type Registration struct {
	ID               string  `json:"id" db:"id"`
	EventID          int64   `json:"eventId" db:"event_id"`
	StudentName      string  `json:"studentName" db:"student_name"`
	GuardianName     string  `json:"guardianName" db:"guardian_name"`
	Institution      string  `json:"institution" db:"institution"`
	ClassName        string  `json:"className" db:"class_name"`
	MobileNumber     string  `json:"mobileNumber" db:"mobile_number"`
	NationalIDNumber string  `json:"nationalIdNumber" db:"national_id_number"`
	City             string  `json:"city" db:"city"`
	State            string  `json:"state" db:"state"`
	OrderID          *string `json:"razorpayOrderId,omitempty" db:"razorpay_order_id"`
	PaymentID        *string `json:"razorpayPaymentId,omitempty" db:"razorpay_payment_id"`
	// Signature is kept so a completed row can be re-verified later.
	Signature       *string       `json:"-" db:"razorpay_signature"`
	AmountPaidMinor int64         `json:"amountPaidMinor" db:"amount_paid_minor"`
	PaymentStatus   PaymentStatus `json:"paymentStatus" db:"payment_status"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time     `json:"updatedAt" db:"updated_at"`
}

// ContactMessage - сообщение во входящих (таблица contact)
type ContactMessage struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Subject   string    `json:"subject" db:"subject"`
	Message   string    `json:"message" db:"message"`
	Source    string    `json:"source" db:"source"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

const ContactSourceRegistration = "registration"

// Feedback - отзыв о мероприятии
type Feedback struct {
	ID        int64     `json:"id" db:"id"`
	EventID   int64     `json:"eventId" db:"event_id"`
	Name      string    `json:"name" db:"name"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
