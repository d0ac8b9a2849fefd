package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Publish results recorded by EventsPublished.
const (
	resultOK    = "ok"
	resultError = "error"
)

var (
	// EventsPublished counts publish attempts by topic and result.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pharmacy",
			Subsystem: "kafka",
			Name:      "events_published_total",
			Help:      "Kafka publish attempts by topic and result (ok, error).",
		},
		[]string{"topic", "result"},
	)

	// PublishDuration observes how long a broker write took.
	PublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pharmacy",
			Subsystem: "kafka",
			Name:      "publish_duration_seconds",
			Help:      "Duration of Kafka writes in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"topic"},
	)
)
