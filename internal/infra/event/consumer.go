package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/DioGolang/lifthub/pkg/logger"
	carrier "github.com/DioGolang/lifthub/pkg/otel"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Consumer struct {
	Conn     *amqp.Connection
	Handler  MessageHandler
	Logger   logger.Logger
	Prefetch int
}

func NewConsumer(conn *amqp.Connection, handler MessageHandler, l logger.Logger) *Consumer {
	return &Consumer{
		Conn:     conn,
		Handler:  handler,
		Logger:   l,
		Prefetch: 20,
	}
}

// Start declares the topology, then consumes queueName until ctx is
// cancelled or the broker closes the delivery channel.
func (c *Consumer) Start(ctx context.Context, queueName, bindingKey string) error {
	ch, err := c.Conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := c.setupTopology(ch, queueName, bindingKey); err != nil {
		return fmt.Errorf("configure topology: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, queueName, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.Logger.Info(ctx, "waiting for messages", logger.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed by broker")
			}
			c.handle(ctx, queueName, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, queueName string, d amqp.Delivery) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier.AMQPHeadersCarrier(d.Headers))
	ctx, span := otel.Tracer("worker-tracer").Start(ctx, "consume "+d.RoutingKey, trace.WithAttributes(
		attribute.String("messaging.destination", queueName),
		attribute.String("messaging.message_id", d.MessageId),
		attribute.String("messaging.routing_key", d.RoutingKey),
	))
	defer span.End()

	headers := map[string]interface{}(d.Headers)
	if headers == nil {
		headers = map[string]interface{}{}
	}
	if _, ok := headers[HeaderEventType]; !ok && d.RoutingKey != "" {
		headers[HeaderEventType] = d.RoutingKey
	}

	err := c.Handler(ctx, d.Body, headers)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			c.Logger.Error(ctx, "failed to ack message", logger.WithError(ackErr))
		}
		return
	}

	span.RecordError(err)
	requeue := !errors.Is(err, ErrPermanent)
	c.Logger.Warn(ctx, "message handling failed",
		logger.String("message_id", d.MessageId),
		logger.Bool("requeue", requeue),
		logger.WithError(err),
	)
	if nackErr := d.Nack(false, requeue); nackErr != nil {
		c.Logger.Error(ctx, "failed to nack message", logger.WithError(nackErr))
	}
}

func (c *Consumer) setupTopology(ch *amqp.Channel, queueName, bindingKey string) error {
	if err := DeclareExchange(ch); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(queueName, bindingKey, Exchange, false, nil); err != nil {
		return err
	}
	return ch.Qos(c.Prefetch, 0, false)
}
