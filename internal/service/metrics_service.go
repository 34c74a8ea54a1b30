package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ledger events counted by MetricsService.
const (
	EventAttendanceWrite    = "attendance_write"
	EventCheckIn            = "checkin"
	EventCheckInRejected    = "checkin_rejected"
	EventPayment            = "payment"
	EventPersistenceFailure = "persistence_failure"
	EventPartialView        = "partial_view"
)

// MetricsService encapsulates Prometheus instrumentation for the ledger.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	ledgerEvents    *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_store_operation_seconds",
		Help:    "Duration of roster and ledger store round trips",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	ledgerEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_events_total",
		Help: "Attendance and payment ledger events",
	}, []string{"event"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeDuration, ledgerEvents, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storeDuration:   storeDuration,
		ledgerEvents:    ledgerEvents,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveStoreOperation records the duration of a store call and whether it failed.
func (m *MetricsService) ObserveStoreOperation(operation string, duration time.Duration, failed bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.storeDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

// RecordLedgerEvent increments the counter for event.
func (m *MetricsService) RecordLedgerEvent(event string) {
	if m == nil {
		return
	}
	m.ledgerEvents.WithLabelValues(event).Inc()
}
