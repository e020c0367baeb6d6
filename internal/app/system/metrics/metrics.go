// Package metrics exposes the Prometheus collectors the service records.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgdesk",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "The total number of HTTP requests",
	}, []string{"route", "method", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "orgdesk",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	organisationOpCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgdesk",
		Subsystem: "organisations",
		Name:      "operations_total",
		Help:      "The total number of organisation operations by outcome",
	}, []string{"operation", "outcome"})
)

// Operation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// ObserveRequest records one finished HTTP request.
func ObserveRequest(route, method string, status int, took time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestCounter.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(route, method).Observe(took.Seconds())
}

// CountOperation records the outcome of an organisation operation.
func CountOperation(op, outcome string) {
	organisationOpCounter.WithLabelValues(op, outcome).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
