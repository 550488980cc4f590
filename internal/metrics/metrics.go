package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	ordersPlaced        *prometheus.CounterVec
	engineRejections    *prometheus.CounterVec
	bestEffortFailures  *prometheus.CounterVec
	balanceMutations    *prometheus.CounterVec
	orderTransitions    *prometheus.CounterVec
	requestsReviewed    *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ordersPlaced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "orders_placed_total",
				Help:      "Orders committed, by delivery mode.",
			},
			[]string{"delivery_mode"},
		),
		engineRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "rejections_total",
				Help:      "Engine operations refused with a coded error, by operation and code.",
			},
			[]string{"operation", "code"},
		),
		bestEffortFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "best_effort_failures_total",
				Help:      "Post-debit steps that failed without failing the order, by step.",
			},
			[]string{"step"},
		),
		balanceMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "mutations_total",
				Help:      "Balance mutations journaled, by reason.",
			},
			[]string{"reason"},
		),
		orderTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orders",
				Name:      "transitions_total",
				Help:      "Committed order status changes, by target status.",
			},
			[]string{"status"},
		),
		requestsReviewed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "requests",
				Name:      "reviewed_total",
				Help:      "Recharge and refund requests reviewed, by kind and outcome.",
			},
			[]string{"kind", "status"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests served, by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency, by method and route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (m *Metrics) OrderPlaced(mode string) {
	if m == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(mode).Inc()
}

func (m *Metrics) Rejected(operation, code string) {
	if m == nil {
		return
	}
	m.engineRejections.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) BestEffortFailed(step string) {
	if m == nil {
		return
	}
	m.bestEffortFailures.WithLabelValues(step).Inc()
}

func (m *Metrics) BalanceMutated(reason string) {
	if m == nil {
		return
	}
	m.balanceMutations.WithLabelValues(reason).Inc()
}

func (m *Metrics) OrderTransitioned(status string) {
	if m == nil {
		return
	}
	m.orderTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) RequestReviewed(kind, status string) {
	if m == nil {
		return
	}
	m.requestsReviewed.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
