package event

import (
	"context"
	"fmt"
	"time"

	carrier "github.com/DioGolang/lifthub/pkg/otel"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
)

// Publisher is satisfied by *amqp.Channel.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Dispatcher struct {
	Channel  Publisher
	Exchange string
}

func NewDispatcher(ch Publisher) *Dispatcher {
	return &Dispatcher{Channel: ch, Exchange: Exchange}
}

// DeclareExchange creates the durable topic exchange student events go to.
func DeclareExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(Exchange, amqp.ExchangeTopic, true, false, false, false, nil)
}

// DispatchRaw publishes payload with topic as routing key. The span in ctx is
// propagated through the message headers.
func (d *Dispatcher) DispatchRaw(ctx context.Context, topic string, payload []byte, headers map[string]string) error {
	table := make(amqp.Table, len(headers)+2)
	for k, v := range headers {
		table[k] = v
	}
	otel.GetTextMapPropagator().Inject(ctx, carrier.AMQPHeadersCarrier(table))

	err := d.Channel.PublishWithContext(ctx, d.Exchange, topic, false, false, amqp.Publishing{
		Headers:      table,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    headers[HeaderEventID],
		Type:         topic,
		Timestamp:    time.Now().UTC(),
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
