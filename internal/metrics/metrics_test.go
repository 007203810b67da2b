package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.VerificationResult(ResultRejected)
	m.VerificationResult(ResultRejected)
	m.VerificationResult(ResultVerified)
	m.SeatRejected()

	body := scrape(t, m)
	assert.Contains(t, body, `clabs_payment_verifications_total{result="rejected"} 2`)
	assert.Contains(t, body, `clabs_payment_verifications_total{result="verified"} 1`)
	assert.Contains(t, body, "clabs_seat_rejections_total 1")
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/orders", http.StatusCreated, 12*time.Millisecond)

	assert.Contains(t, scrape(t, m), `clabs_http_requests_total{handler="/api/orders",status="201"} 1`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SeatRejected()
		m.InboxBackupFailed()
		m.ObserveRequest("/health", 200, time.Millisecond)
	})
}
