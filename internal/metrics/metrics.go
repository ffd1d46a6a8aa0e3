// Package metrics exposes Prometheus collectors for the landing service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by submission and delivery counters.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeInvalid   = "invalid"
	OutcomeSpam      = "spam"
	OutcomeMisconfig = "misconfigured"
)

var (
	httpRequestsTotal           *prometheus.CounterVec
	httpRequestDurationSeconds  *prometheus.HistogramVec
	leadSubmissionsTotal        *prometheus.CounterVec
	leadDeliveriesTotal         *prometheus.CounterVec
	leadDeliveryDurationSeconds *prometheus.HistogramVec
	leadRateLimitedTotal        prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		leadSubmissionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_submissions_total",
				Help: "Total number of lead submissions, labeled by entry path and outcome.",
			},
			[]string{"path", "outcome"},
		)

		leadDeliveriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_deliveries_total",
				Help: "Total number of channel delivery attempts, labeled by channel and outcome.",
			},
			[]string{"channel", "outcome"},
		)

		leadDeliveryDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lead_delivery_duration_seconds",
				Help:    "Histogram of channel delivery latencies.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"channel"},
		)

		leadRateLimitedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "lead_rate_limited_total",
				Help: "Total number of lead submissions rejected by the rate limiter.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveSubmission counts a lead submission received on path.
func ObserveSubmission(path, outcome string) {
	Init()
	leadSubmissionsTotal.WithLabelValues(path, outcome).Inc()
}

// ObserveDelivery records one channel attempt.
func ObserveDelivery(channel string, err error, duration time.Duration) {
	Init()
	outcome := OutcomeDelivered
	if err != nil {
		outcome = OutcomeFailed
	}
	leadDeliveriesTotal.WithLabelValues(channel, outcome).Inc()
	leadDeliveryDurationSeconds.WithLabelValues(channel).Observe(duration.Seconds())
}

// ObserveRateLimited counts a submission rejected by the rate limiter.
func ObserveRateLimited() {
	Init()
	leadRateLimitedTotal.Inc()
}
