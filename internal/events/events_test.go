package events

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, ParseBrokers(" k1:9092, ,k2:9092,"))
	assert.Empty(t, ParseBrokers(""))
}

func TestNewKafkaPublisherRequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "orders")
	require.Error(t, err)
}

func TestNewStampsEvent(t *testing.T) {
	e := New(TypeOrderCreated, "ORD-101", map[string]int{"items": 2})
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "ORD-101", e.Key)
	assert.False(t, e.OccurredAt.IsZero())
}

func TestLogPublisherNeverFails(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	p := LogPublisher{Log: l}
	require.NoError(t, p.Publish(context.Background(), New(TypeOrderStatusChanged, "ORD-7", nil)))
	require.NoError(t, p.Close())
}

func TestRecorderKeepsOrder(t *testing.T) {
	r := &Recorder{}
	_ = r.Publish(context.Background(), New(TypeOrderCreated, "ORD-101", nil))
	_ = r.Publish(context.Background(), New(TypeOrderStatusChanged, "ORD-101", nil))
	assert.Equal(t, []string{TypeOrderCreated, TypeOrderStatusChanged}, r.Types())
}

func TestKafkaPublisherFlushesEachEvent(t *testing.T) {
	p, err := NewKafkaPublisher([]string{"k1:9092"}, "orders")
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, 1, p.writer.BatchSize)
	assert.LessOrEqual(t, p.writer.BatchTimeout, 10*time.Millisecond)
}
