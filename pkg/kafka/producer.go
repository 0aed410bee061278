package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Ramsey-B/peony/pkg/metrics"
	"github.com/Ramsey-B/peony/pkg/tracing"
)

const (
	EventDateRequested = "service_session.date_requested"
	EventDateCleared   = "service_session.date_cleared"
	EventConsumed      = "service_session.consumed"
)

type Config struct {
	Brokers []string
	Topic   string
}

// ParseBrokers splits a comma-separated broker list
func ParseBrokers(brokers string) []string {
	out := make([]string, 0)
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// MessageWriter is the subset of kafka.Writer the producer uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes service session lifecycle events
type Producer struct {
	writer MessageWriter
	logger ectologger.Logger
	topic  string
}

func NewProducer(cfg Config, logger ectologger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewProducerWithWriter(writer, cfg.Topic, logger)
}

func NewProducerWithWriter(writer MessageWriter, topic string, logger ectologger.Logger) *Producer {
	return &Producer{
		writer: writer,
		logger: logger,
		topic:  topic,
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// SessionEventMessage is emitted whenever a service session's booking changes
type SessionEventMessage struct {
	Type              string    `json:"type"`
	SessionID         string    `json:"sessionId"`
	OrderID           string    `json:"orderId"`
	UserID            string    `json:"userId"`
	AppointmentMode   string    `json:"appointmentMode"`
	AppointmentStatus string    `json:"appointmentStatus"`
	RequestedDate     *string   `json:"requestedDate,omitempty"`
	RequestedTime     *string   `json:"requestedTime,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
	TraceID           string    `json:"traceId,omitempty"`
}

// PublishSessionEvent writes evt keyed by session id so a session's events stay ordered
func (p *Producer) PublishSessionEvent(ctx context.Context, evt *SessionEventMessage) error {
	if evt == nil {
		return fmt.Errorf("session event is nil")
	}

	ctx, span := tracing.StartSpan(ctx, "Kafka.PublishSessionEvent")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination", p.topic),
		attribute.String("messaging.operation", "publish"),
		attribute.String("event.type", evt.Type),
		attribute.String("session_id", evt.SessionID),
	)

	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	evt.TraceID = tracing.GetTraceID(ctx)

	data, err := json.Marshal(evt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal failed")
		return fmt.Errorf("failed to marshal session event: %w", err)
	}

	headers := []kafka.Header{
		{Key: "type", Value: []byte(evt.Type)},
		{Key: "session_id", Value: []byte(evt.SessionID)},
	}
	if traceparent := tracing.GetTraceParent(ctx); traceparent != "" {
		headers = append(headers, kafka.Header{Key: "traceparent", Value: []byte(traceparent)})
	}

	start := time.Now()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(evt.SessionID),
		Value:   data,
		Headers: headers,
	})
	duration := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		metrics.RecordKafkaPublish(p.topic, "error", duration)
		p.logger.WithContext(ctx).WithError(err).Errorf("Failed to publish %s to Kafka topic %s", evt.Type, p.topic)
		return err
	}

	metrics.RecordKafkaPublish(p.topic, "success", duration)
	p.logger.WithContext(ctx).WithFields(map[string]any{
		"topic":      p.topic,
		"type":       evt.Type,
		"session_id": evt.SessionID,
	}).Debug("Published session event")
	return nil
}
