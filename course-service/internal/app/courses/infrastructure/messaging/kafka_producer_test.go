package messaging

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaProducer(t *testing.T) {
	producer := NewKafkaProducer([]string{"localhost:9092", "localhost:9093"}, "course_events")
	defer producer.Close()

	assert.Equal(t, "course_events", producer.topic)
	assert.Equal(t, "course_events", producer.writer.Topic)
	assert.IsType(t, &kafka.Hash{}, producer.writer.Balancer)
	assert.Equal(t, kafka.RequireOne, producer.writer.RequiredAcks)
}

func TestKafkaProducer_PublishMessage_CancelledContext(t *testing.T) {
	// Arrange - брокер недоступен, контекст уже отменен
	producer := NewKafkaProducer([]string{"127.0.0.1:1"}, "course_events")
	defer producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	err := producer.PublishMessage(ctx, "course-1", []byte(`{"event_type":"COURSE_CREATED"}`))

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write message to kafka")
}
