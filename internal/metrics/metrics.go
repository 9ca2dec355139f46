// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventorycart_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventorycart_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	StockConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventorycart_stock_conflicts_total",
		Help: "Cart mutations rejected because the requested quantity exceeds stock.",
	}, []string{"operation"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventorycart_events_published_total",
		Help: "Domain events handed to the publisher by type and outcome.",
	}, []string{"type", "outcome"})
)
