package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"hostavail/pkg/kafka"
	"hostavail/pkg/logger"
)

func TestMetricsProducerMiddleware(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	mw := MetricsProducerMiddleware(m)
	msg := kafka.Message{Topic: "decisions", Key: "k", Value: []byte("{}")}

	ok := func(context.Context, kafka.Message) error { return nil }
	fail := func(context.Context, kafka.Message) error { return errors.New("connection reset by peer") }

	assert.NoError(t, mw(context.Background(), msg, ok))
	assert.NoError(t, mw(context.Background(), msg, ok))
	assert.Error(t, mw(context.Background(), msg, fail))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.published.WithLabelValues("decisions", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.published.WithLabelValues("decisions", "transient")))
}

func TestLoggingProducerMiddleware_PassesErrorThrough(t *testing.T) {
	mw := LoggingProducerMiddleware(logger.NewNop())
	want := errors.New("boom")

	err := mw(context.Background(), kafka.Message{Topic: "decisions"}, func(context.Context, kafka.Message) error {
		return want
	})
	assert.ErrorIs(t, err, want)
}
