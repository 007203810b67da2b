package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "clabs"

// Verification results recorded by VerificationResult.
const (
	ResultVerified     = "verified"
	ResultReplayed     = "replayed"
	ResultRejected     = "rejected"
	ResultUnreconciled = "unreconciled"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	latencyMS     *prometheus.HistogramVec
	orders        *prometheus.CounterVec
	verifications *prometheus.CounterVec
	seatRejected  prometheus.Counter
	inboxFailures prometheus.Counter
	registrations *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		latencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_orders_total",
			Help:      "Gateway orders by outcome.",
		}, []string{"outcome"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_verifications_total",
			Help:      "Payment verifications by result.",
		}, []string{"result"}),
		seatRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seat_rejections_total",
			Help:      "Registrations refused because the event was full.",
		}),
		inboxFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbox_backup_failures_total",
			Help:      "Registration backups that could not be filed into the contact inbox.",
		}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Stored registrations by payment status.",
		}, []string{"status"}),
	}

	reg.MustRegister(m.requests, m.latencyMS, m.orders, m.verifications,
		m.seatRejected, m.inboxFailures, m.registrations)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(handler string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	m.latencyMS.WithLabelValues(handler).Observe(float64(elapsed.Milliseconds()))
}

func (m *Metrics) OrderCreated(outcome string) {
	if m == nil {
		return
	}
	m.orders.WithLabelValues(outcome).Inc()
}

func (m *Metrics) VerificationResult(result string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(result).Inc()
}

func (m *Metrics) SeatRejected() {
	if m == nil {
		return
	}
	m.seatRejected.Inc()
}

func (m *Metrics) InboxBackupFailed() {
	if m == nil {
		return
	}
	m.inboxFailures.Inc()
}

func (m *Metrics) RegistrationStored(status string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(status).Inc()
}
