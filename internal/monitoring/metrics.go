package monitoring

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors for the ingestion pipeline
type Metrics struct {
	WebhookDeliveries  *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	MessagesStored     prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates the collectors on a private registry, so tests can
// construct multiple instances without duplicate registration panics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		WebhookDeliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailagent_webhook_deliveries_total",
				Help: "Total webhook deliveries by terminal outcome",
			},
			[]string{"outcome"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "emailagent_generation_duration_seconds",
				Help:    "Duration of summary generation calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		MessagesStored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "emailagent_messages_stored_total",
				Help: "Total new messages persisted",
			},
		),
		registry: registry,
	}

	registry.MustRegister(m.WebhookDeliveries, m.GenerationDuration, m.MessagesStored)
	return m
}

// Outcome label values for WebhookDeliveries
const (
	OutcomeAccepted     = "accepted"
	OutcomeDuplicate    = "duplicate"
	OutcomeUnauthorized = "unauthorized"
	OutcomeInvalid      = "invalid"
	OutcomeFailed       = "failed"
)

// Handler returns the /metrics endpoint for this registry
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
