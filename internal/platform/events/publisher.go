// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/agroviatech/portal/internal/platform/ctxutil"
)

// # Kafka

// KafkaPublisher writes events with a kafka-go writer. The aggregate id is the
// message key so all events of one user or request land on the same partition.
type KafkaPublisher struct {
	writer  *kafka.Writer
	brokers []string
	logger  *slog.Logger
}

// NewKafkaPublisher creates a synchronous publisher for the given brokers.
func NewKafkaPublisher(brokers []string, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              1,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	return &KafkaPublisher{writer: writer, brokers: brokers, logger: logger}
}

// Publish implements [Publisher].
func (publisher *KafkaPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	data, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(event.AggregateID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "source", Value: []byte(event.Source)},
		},
	}

	if event.CorrelationID != "" {
		message.Headers = append(message.Headers, kafka.Header{
			Key: "correlation_id", Value: []byte(event.CorrelationID),
		})
	}

	if err := publisher.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("publish event to %s: %w", topic, err)
	}

	publisher.logger.DebugContext(ctx, "event_published",
		slog.String("topic", topic),
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
	)
	return nil
}

// Ping dials the first reachable broker. Used by the readiness probe.
func (publisher *KafkaPublisher) Ping(ctx context.Context) error {
	var lastErr error
	for _, broker := range publisher.brokers {
		connection, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		return connection.Close()
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no kafka broker configured")
	}
	return fmt.Errorf("kafka: ping failed: %w", lastErr)
}

// Close flushes and closes the underlying writer.
func (publisher *KafkaPublisher) Close() error {
	return publisher.writer.Close()
}

// # Log Fallback

// LogPublisher records events in the structured log only.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that never fails.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish implements [Publisher].
func (publisher *LogPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	publisher.logger.InfoContext(ctx, "domain_event",
		slog.String("topic", topic),
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
		slog.String("data", string(event.Data)),
	)
	return nil
}

// # Test Recorder

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []*Event
}

// Publish implements [Publisher].
func (recorder *Recorder) Publish(ctx context.Context, topic string, event *Event) error {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()

	recorder.events = append(recorder.events, event)
	return nil
}

// Types returns the event types recorded so far, in publish order.
func (recorder *Recorder) Types() []string {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()

	types := make([]string, len(recorder.events))
	for i, event := range recorder.events {
		types[i] = event.EventType
	}
	return types
}

// Events returns a copy of the recorded events.
func (recorder *Recorder) Events() []*Event {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()

	out := make([]*Event, len(recorder.events))
	copy(out, recorder.events)
	return out
}

// # Emit Helper

// Emit builds and publishes an event, tagging it with the request id found in
// ctx. Failures are logged and swallowed so the calling operation still succeeds.
func Emit(ctx context.Context, publisher Publisher, topic, eventType, aggregateID, aggregateType string, data any) {
	if publisher == nil {
		return
	}

	logger := ctxutil.GetLogger(ctx)

	event, err := NewEvent(eventType, aggregateID, aggregateType, data)
	if err != nil {
		logger.ErrorContext(ctx, "event_build_failed", slog.String("event_type", eventType), slog.Any("error", err))
		return
	}
	event.WithCorrelationID(ctxutil.GetRequestID(ctx))

	if err := publisher.Publish(ctx, topic, event); err != nil {
		logger.WarnContext(ctx, "event_publish_failed",
			slog.String("topic", topic),
			slog.String("event_type", eventType),
			slog.Any("error", err),
		)
	}
}
