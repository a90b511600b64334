package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-level Prometheus metrics. Module-specific metrics
// live next to their modules (internal/pipeline has its own set).
type Metrics struct {
	HTTPRequests  *prometheus.CounterVec
	EventsDropped prometheus.Counter
}

// New creates and registers all process-level Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mindcast_http_requests_total",
			Help: "Total admin API requests by route and status class",
		}, []string{"route", "status"}),
		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mindcast_events_dropped_total",
			Help: "Pipeline events dropped because the event buffer was full",
		}),
	}
}

// IncHTTPRequest records one admin API request.
func (m *Metrics) IncHTTPRequest(route, status string) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(route, status).Inc()
	}
}

// IncEventsDropped records a dropped pipeline event.
func (m *Metrics) IncEventsDropped() {
	if m != nil {
		m.EventsDropped.Inc()
	}
}
