package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/creditledger/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	CreditsMovedTotal *prometheus.CounterVec
	EntriesWritten    *prometheus.CounterVec
	OperationErrors   *prometheus.CounterVec
	LockRetries       prometheus.Counter

	// Metering metrics
	MeterRejections prometheus.Counter

	// Alert metrics
	AlertsEmitted          *prometheus.CounterVec
	NotificationsDelivered prometheus.Counter
	NotificationsFailed    prometheus.Counter
	OutboxPublished        prometheus.Counter

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	HTTPInFlight  prometheus.Gauge
	RateLimitHits prometheus.Counter
	AuthFailures  *prometheus.CounterVec
}

// New creates all metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		// Ledger metrics
		CreditsMovedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditledger_credits_moved_total",
				Help: "Credits moved by entry kind and direction",
			},
			[]string{"kind", "direction"},
		),
		EntriesWritten: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditledger_entries_written_total",
				Help: "Ledger entries written by kind",
			},
			[]string{"kind"},
		),
		OperationErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditledger_operation_errors_total",
				Help: "Failed ledger operations by operation and error type",
			},
			[]string{"operation", "error_type"},
		),
		LockRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_lock_retries_total",
			Help: "Transactions retried after lock contention or serialization failure",
		}),

		// Metering metrics
		MeterRejections: f.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_meter_rejections_total",
			Help: "Metered operations refused for insufficient credits",
		}),

		// Alert metrics
		AlertsEmitted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditledger_alerts_emitted_total",
				Help: "Low-balance alerts emitted by threshold",
			},
			[]string{"threshold"},
		),
		NotificationsDelivered: f.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_notifications_delivered_total",
			Help: "Notifications handed to the inbox",
		}),
		NotificationsFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_notifications_failed_total",
			Help: "Notification deliveries that failed and were left for retry",
		}),
		OutboxPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_outbox_published_total",
			Help: "Outbox events published by the background publisher",
		}),

		// API metrics
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "creditledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "creditledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: f.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		}),
		AuthFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),
	}
}

// CreditsMoved records one committed entry.
func (m *Metrics) CreditsMoved(kind domain.EntryKind, amount int64) {
	direction := "credit"
	if amount < 0 {
		direction = "debit"
		amount = -amount
	}
	m.CreditsMovedTotal.WithLabelValues(string(kind), direction).Add(float64(amount))
	m.EntriesWritten.WithLabelValues(string(kind)).Inc()
}

// OperationFailed records a failed ledger operation.
func (m *Metrics) OperationFailed(operation string, err error) {
	m.OperationErrors.WithLabelValues(operation, ErrorType(err)).Inc()
}

// MeterRejected records a refused metered operation.
func (m *Metrics) MeterRejected() {
	m.MeterRejections.Inc()
}

// AlertEmitted records an alert at threshold.
func (m *Metrics) AlertEmitted(threshold int64) {
	m.AlertsEmitted.WithLabelValues(strconv.FormatInt(threshold, 10)).Inc()
}

// NotificationDelivered records a delivered notification.
func (m *Metrics) NotificationDelivered() {
	m.NotificationsDelivered.Inc()
}

// NotificationFailed records a failed delivery.
func (m *Metrics) NotificationFailed() {
	m.NotificationsFailed.Inc()
}

// LockRetried records a retried transaction.
func (m *Metrics) LockRetried() {
	m.LockRetries.Inc()
}

// EventPublished records an event published by the outbox worker.
func (m *Metrics) EventPublished() {
	m.OutboxPublished.Inc()
}

// RequestServed records a completed HTTP request under its route pattern.
func (m *Metrics) RequestServed(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RateLimited records a throttled request.
func (m *Metrics) RateLimited() {
	m.RateLimitHits.Inc()
}

// AuthFailed records a rejected credential.
func (m *Metrics) AuthFailed(reason string) {
	m.AuthFailures.WithLabelValues(reason).Inc()
}

// ErrorType maps an error to a low-cardinality label.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrInsufficientCredits):
		return "insufficient_credits"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrBusy), errors.Is(err, domain.ErrLockTimeout):
		return "busy"
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidOperation),
		errors.Is(err, domain.ErrInvalidEntryKind),
		errors.Is(err, domain.ErrDescriptionTooLong),
		errors.Is(err, domain.ErrInvalidAccountID):
		return "validation"
	default:
		return "internal"
	}
}
