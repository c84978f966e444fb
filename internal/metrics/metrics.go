// Package metrics exposes Prometheus instrumentation for the scheduling engine
// and the HTTP surface. A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dcs"

type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	notifyFailures    *prometheus.CounterVec
	remindersSent     prometheus.Counter
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
}

// New registers collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "appointment_operations_total",
		Help:      "Scheduling operations by operation and outcome",
	}, []string{"operation", "outcome"})

	operationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "appointment_operation_duration_seconds",
		Help:      "Duration of scheduling operations, lock wait included",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	notifyFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Notifications that could not be delivered",
	}, []string{"event"})

	remindersSent := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_sent_total",
		Help:      "Appointment reminders delivered",
	})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	registry.MustRegister(
		operations, operationDuration, notifyFailures, remindersSent,
		requestDuration, requestTotal,
		collectors.NewGoCollector(),
	)

	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		operations:        operations,
		operationDuration: operationDuration,
		notifyFailures:    notifyFailures,
		remindersSent:     remindersSent,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveOperation records one engine operation. The outcome label is the
// domain error kind, "ok", or "error" for anything else.
func (m *Metrics) ObserveOperation(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, Outcome(err)).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) NotificationFailed(event string) {
	if m == nil {
		return
	}
	m.notifyFailures.WithLabelValues(event).Inc()
}

func (m *Metrics) RemindersSent(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.remindersSent.Add(float64(n))
}

// ObserveHTTPRequest records request metrics. path should be the route
// template, not the raw URL.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var domainErr *model.Error
	if errors.As(err, &domainErr) {
		return string(domainErr.Kind)
	}
	return "error"
}
