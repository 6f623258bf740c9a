package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ConsumerMetrics records metadata for event consumer workers.
type ConsumerMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewConsumerMetrics registers the consumer metrics on the provided registerer.
func NewConsumerMetrics(reg prometheus.Registerer) *ConsumerMetrics {
	if reg == nil {
		return &ConsumerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "event_handle_duration_seconds",
		Help:    "Duration of event handling in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "events_processed",
		Help: "Successfully processed events.",
	}, []string{"event"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "events_failed",
		Help: "Events whose handler returned an error.",
	}, []string{"event"})
	reg.MustRegister(duration, success, failure)
	return &ConsumerMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the handling duration for the named event type.
func (c *ConsumerMetrics) ObserveDuration(event string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(event)).Observe(duration.Seconds())
}

// IncSuccess increments the processed counter for the named event type.
func (c *ConsumerMetrics) IncSuccess(event string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncFailure increments the failure counter for the named event type.
func (c *ConsumerMetrics) IncFailure(event string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(event)).Inc()
}

func normalizeLabel(event string) string {
	if event == "" {
		return "unknown"
	}
	return event
}
