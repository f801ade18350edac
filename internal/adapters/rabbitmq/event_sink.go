// Package rabbitmq implements the OptionalExternalEventSink outbound
// interface (spec.md §6) the outbox relay publishes to. Grounded on the
// teacher's ProducerRabbitMQRepository
// (_examples/LerianStudio-midaz/components/consumer/internal/adapters/rabbitmq/producer.rabbitmq.go):
// same amqp.Publishing shape (ContentType, DeliveryMode Persistent), same
// tracer-span-around-Publish pattern, adapted to publish by event-type-name
// routing key on the topic exchange the connection hub declares.
package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/corebank-platform/core/platform/mlog"
	"github.com/corebank-platform/core/platform/mopentelemetry"
	"github.com/corebank-platform/core/platform/mrabbitmq"
)

// EventSink publishes domain events to the external RabbitMQ exchange.
// Implements the relay's OptionalExternalEventSink outbound interface
// (spec.md §6): "used by the relay in a future revision" — this
// implementation brings that revision forward.
type EventSink struct {
	connection *mrabbitmq.Connection
	logger     mlog.Logger
	telemetry  *mopentelemetry.Telemetry
}

// New returns an EventSink backed by conn.
func New(conn *mrabbitmq.Connection, logger mlog.Logger, telemetry *mopentelemetry.Telemetry) *EventSink {
	return &EventSink{connection: conn, logger: logger, telemetry: telemetry}
}

type envelope struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredOn time.Time       `json:"occurredOn"`
}

// Publish sends the event to the topic exchange, routed by eventTypeName.
func (s *EventSink) Publish(ctx context.Context, eventTypeName string, payload json.RawMessage, occurredOn time.Time) error {
	ctx, span := s.telemetry.Start(ctx, "rabbitmq.event_sink.publish")
	defer span.End()

	s.logger.Infof("publishing event %s to external sink", eventTypeName)

	channel, err := s.connection.GetChannel()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get rabbitmq channel", err)
		return err
	}

	body, err := json.Marshal(envelope{Type: eventTypeName, Payload: payload, OccurredOn: occurredOn})
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to marshal event envelope", err)
		return err
	}

	err = channel.PublishWithContext(ctx, s.connection.Exchange, eventTypeName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to publish event", err)
		s.logger.Errorf("failed to publish event %s: %v", eventTypeName, err)

		return err
	}

	return nil
}
