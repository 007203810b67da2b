package consumers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"clabs/internal/models"

	"github.com/nats-io/stan.go"
)

// AuditIndexer stores audit records; implemented by search.ElasticsearchClient.
type AuditIndexer interface {
	IndexRecord(ctx context.Context, record *models.AuditRecord) error
}

type Handlers struct {
	indexer AuditIndexer
	timeout time.Duration
	now     func() time.Time
}

func NewHandlers(indexer AuditIndexer, timeout time.Duration) *Handlers {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handlers{indexer: indexer, timeout: timeout, now: time.Now}
}

// HandleAuditRecord индексирует событие журнала платежей. Сообщение без
// подтверждения будет доставлено повторно по истечении AckWait.
func (h *Handlers) HandleAuditRecord(m *stan.Msg) {
	if h.process(m.Subject, m.Data) {
		if err := m.Ack(); err != nil {
			slog.Error("Failed to ack audit message", "subject", m.Subject, "sequence", m.Sequence, "error", err)
		}
	}
}

// process returns true when the message must be acknowledged.
func (h *Handlers) process(subject string, data []byte) bool {
	var record models.AuditRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// Acknowledge even on unmarshal error to avoid redelivery
		slog.Error("Failed to unmarshal audit record", "subject", subject, "error", err)
		return true
	}

	if record.Type == "" {
		record.Type = subject
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = h.now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.indexer.IndexRecord(ctx, &record); err != nil {
		slog.Error("Failed to index audit record",
			"subject", subject,
			"order_id", record.OrderID,
			"payment_id", record.PaymentID,
			"error", err)
		return false
	}

	slog.Info("Indexed audit record", "type", record.Type, "document_id", record.DocumentID())
	return true
}
