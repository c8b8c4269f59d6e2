package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter records written messages instead of talking to a broker.
type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// --- Event tests ---

func TestNewEvent_Fields(t *testing.T) {
	type ConfirmationData struct {
		Token  string `json:"token"`
		UserID int64  `json:"user_id"`
	}

	data := ConfirmationData{Token: "tok-123", UserID: 4242}
	event, err := NewEvent("payment.confirmation_requested", "tok-123", "payment_confirmation", "storefront-bot", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID, "EventID should be a non-empty UUID")
	assert.Equal(t, "payment.confirmation_requested", event.EventType)
	assert.Equal(t, "tok-123", event.AggregateID)
	assert.Equal(t, "payment_confirmation", event.AggregateType)
	assert.Equal(t, "storefront-bot", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)
	assert.Nil(t, event.Metadata)

	var decoded ConfirmationData
	require.NoError(t, json.Unmarshal(event.Data, &decoded))
	assert.Equal(t, data, decoded)
}

func TestNewEvent_InvalidData(t *testing.T) {
	// Channels are not serializable to JSON.
	_, err := NewEvent("test.event", "agg-1", "test", "test-service", make(chan int))
	require.Error(t, err)
}

func TestEvent_WithCorrelationIDAndMetadata(t *testing.T) {
	event, err := NewEvent("test.event", "agg-1", "test", "svc", nil)
	require.NoError(t, err)

	result := event.WithCorrelationID("upd-1").WithMetadata("role", "admin")
	assert.Same(t, event, result, "builders should return the same event for chaining")
	assert.Equal(t, "upd-1", event.CorrelationID)
	assert.Equal(t, "admin", event.Metadata["role"])
}

func TestEvent_WithMetadata_NilMetadataMap(t *testing.T) {
	event := &Event{EventID: "test-id", EventType: "test"}
	event.WithMetadata("key", "value")
	assert.Equal(t, "value", event.Metadata["key"])
}

func TestNewEvent_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name                           string
		eventType, aggregateID, source string
	}{
		{"no type", "", "tok", "storefront-bot"},
		{"no aggregate", "payment.confirmation_requested", "", "storefront-bot"},
		{"no source", "payment.confirmation_requested", "tok", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEvent(tt.eventType, tt.aggregateID, "payment_confirmation", tt.source, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidEvent)
		})
	}
}

func TestEvent_MessageOmitsEmptyCorrelationHeader(t *testing.T) {
	event, err := NewEvent("x", "agg", "t", "svc", nil)
	require.NoError(t, err)

	msg, err := event.message("topic-a")
	require.NoError(t, err)
	assert.Equal(t, "topic-a", msg.Topic)
	assert.Equal(t, "agg", string(msg.Key))
	assert.Empty(t, headerValue(msg, "correlation_id"))
	assert.Len(t, msg.Headers, 2)
}

// --- Topic tests ---

func TestTopic_Format(t *testing.T) {
	assert.Equal(t, "storefront.payment.confirmation_requested", Topic("payment", "confirmation_requested"))
}

// --- Producer tests ---

func TestDefaultProducerConfig(t *testing.T) {
	brokers := []string{"broker1:9092", "broker2:9092"}
	cfg := DefaultProducerConfig(brokers)

	assert.Equal(t, brokers, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async)
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, []string{"localhost:9092"}, nil)
	topic := "test.producer.publish"
	before := counterValue(t, "kafka_producer_messages_published_total", topic)

	event, err := NewEvent("payment.confirmation_requested", "tok-1", "payment_confirmation", "storefront-bot", map[string]string{"a": "b"})
	require.NoError(t, err)
	event.WithCorrelationID("upd-77")

	require.NoError(t, p.Publish(context.Background(), topic, event))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, topic, msg.Topic)
	assert.Equal(t, "tok-1", string(msg.Key))
	assert.Equal(t, "payment.confirmation_requested", headerValue(msg, "event_type"))
	assert.Equal(t, "storefront-bot", headerValue(msg, "source"))
	assert.Equal(t, "upd-77", headerValue(msg, "correlation_id"))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.InDelta(t, before+1, counterValue(t, "kafka_producer_messages_published_total", topic), 0.001)
}

func TestProducer_Publish_WriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := NewProducerWithWriter(w, nil, nil)
	topic := "test.producer.failure"
	before := counterValue(t, "kafka_producer_messages_failed_total", topic)

	event, err := NewEvent("x", "agg", "t", "svc", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), topic, event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish event to "+topic)
	assert.InDelta(t, before+1, counterValue(t, "kafka_producer_messages_failed_total", topic), 0.001)
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil, nil)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}
