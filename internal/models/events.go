package models

import "time"

// NATS subjects of the payment audit trail
const (
	EventRegistrationCompleted = "registration.completed"
	EventRegistrationCancelled = "registration.cancelled"
	EventPaymentRejected       = "payment.rejected"
	EventPaymentUnreconciled   = "payment.unreconciled"
	EventPaymentFailed         = "payment.failed"
	EventPaymentCaptured       = "payment.captured"
)

// AuditSubjects lists every subject the audit consumer indexes.
var AuditSubjects = []string{
	EventRegistrationCompleted,
	EventRegistrationCancelled,
	EventPaymentRejected,
	EventPaymentUnreconciled,
	EventPaymentFailed,
	EventPaymentCaptured,
}

// AuditRecord is both the NATS payload and the Elasticsearch document.
type AuditRecord struct {
	Type           string        `json:"type"`
	RegistrationID string        `json:"registration_id,omitempty"`
	EventID        int64         `json:"event_id,omitempty"`
	OrderID        string        `json:"order_id,omitempty"`
	PaymentID      string        `json:"payment_id,omitempty"`
	AmountMinor    int64         `json:"amount_minor,omitempty"`
	Currency       string        `json:"currency,omitempty"`
	Status         PaymentStatus `json:"status,omitempty"`
	StudentName    string        `json:"student_name,omitempty"`
	MobileNumber   string        `json:"mobile_number,omitempty"`
	Reason         string        `json:"reason,omitempty"`
	ErrorCode      string        `json:"error_code,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}

// DocumentID is stable per (type, order, payment) so redelivered
// messages overwrite instead of duplicating.
func (r AuditRecord) DocumentID() string {
	if r.OrderID == "" && r.PaymentID == "" {
		return r.Type + ":" + r.RegistrationID
	}
	return r.Type + ":" + r.OrderID + ":" + r.PaymentID
}
