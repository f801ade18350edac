// Package mrabbitmq is the connection hub for RabbitMQ, mirroring the
// teacher's common/mrabbitmq package. It backs the OptionalExternalEventSink
// the outbox relay publishes to (spec.md §6).
package mrabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/corebank-platform/core/platform/mlog"
)

// Connection is a hub which deals with RabbitMQ connections.
type Connection struct {
	ConnectionString string
	Exchange         string
	Logger           mlog.Logger

	conn      *amqp.Connection
	channel   *amqp.Channel
	Connected bool
}

// Connect dials the broker, opens a channel, and declares the topic exchange
// domain events are published to.
func (c *Connection) Connect() error {
	c.Logger.Info("connecting to rabbitmq...")

	conn, err := amqp.Dial(c.ConnectionString)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(c.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	c.conn = conn
	c.channel = ch
	c.Connected = true

	c.Logger.Info("connected to rabbitmq")

	return nil
}

// GetChannel returns the channel, connecting lazily if necessary.
func (c *Connection) GetChannel() (*amqp.Channel, error) {
	if !c.Connected {
		if err := c.Connect(); err != nil {
			return nil, err
		}
	}

	return c.channel, nil
}

// Close tears down the channel and connection.
func (c *Connection) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}

	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}
