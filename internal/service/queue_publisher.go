// Package queue_publisher publishes booking lifecycle events to
// RabbitMQ. Failures are logged and returned so callers can ignore
// them without interrupting the main request flow: eventing is best
// effort, the database is the source of truth.
package queue_publisher

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	q "github.com/campusdesk/table-reservation/internal/queue"
)

// PublishBookingEvent publishes ev to the durable booking.events
// queue. Messages are marked persistent so they survive broker
// restarts.
func PublishBookingEvent(ctx context.Context, logger *zap.Logger, ev q.BookingEvent) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		logger.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare so publisher and consumer can start in any order.
	if _, err := ch.QueueDeclare(
		"booking.events", // name
		true,             // durable
		false,            // autoDelete
		false,            // exclusive
		false,            // noWait
		nil,              // args
	); err != nil {
		logger.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		logger.Warn("rabbitmq: marshal event failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",               // default exchange
		"booking.events", // routing key = queue name
		false,            // mandatory
		false,            // immediate
		pub,
	); err != nil {
		logger.Warn("rabbitmq: publish failed", zap.Error(err))
		return err
	}

	return nil
}
