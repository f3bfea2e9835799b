package kafka_middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"hostavail/pkg/kafka"
)

// Metrics holds the producer collectors.
type Metrics struct {
	published       *prometheus.CounterVec
	publishDuration *prometheus.HistogramVec
}

// NewMetrics creates the producer collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_messages_published_total",
			Help: "Kafka publish attempts by topic and result",
		}, []string{"topic", "result"}),
		publishDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kafka_publish_duration_seconds",
			Help:    "Duration of Kafka publish calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"}),
	}
	reg.MustRegister(m.published, m.publishDuration)
	return m
}

// MetricsProducerMiddleware counts publishes by outcome and times them.
// Failures are labelled with their transient/permanent classification.
func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		m.publishDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())
		result := "success"
		if err != nil {
			result = kafka.ClassifyError(err).String()
		}
		m.published.WithLabelValues(msg.Topic, result).Inc()

		return err
	}
}
