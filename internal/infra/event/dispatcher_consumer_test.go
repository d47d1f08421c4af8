package event

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DioGolang/lifthub/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DispatchRaw(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub)

	err := d.DispatchRaw(context.Background(), "student.registered", []byte(`{"cpf":"11144477735"}`), map[string]string{
		HeaderEventID: "e-9",
	})

	require.NoError(t, err)
	assert.Equal(t, Exchange, pub.exchange)
	assert.Equal(t, "student.registered", pub.key)
	assert.Equal(t, "e-9", pub.msg.MessageId)
	assert.Equal(t, "e-9", pub.msg.Headers[HeaderEventID])
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "application/json", pub.msg.ContentType)
}

func TestDispatcher_WrapsPublishError(t *testing.T) {
	pub := &fakePublisher{err: amqp.ErrClosed}

	err := NewDispatcher(pub).DispatchRaw(context.Background(), "student.removed", nil, nil)

	assert.ErrorIs(t, err, amqp.ErrClosed)
	assert.Contains(t, err.Error(), "student.removed")
}

func TestConsumer_Handle(t *testing.T) {
	tests := []struct {
		name         string
		handlerErr   error
		wantAck      bool
		wantRequeued bool
	}{
		{name: "success acks", wantAck: true},
		{name: "transient failure requeues", handlerErr: errors.New("timeout"), wantRequeued: true},
		{name: "permanent failure drops", handlerErr: fmt.Errorf("%w: bad", ErrPermanent)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var gotHeaders map[string]interface{}
			c := NewConsumer(nil, func(_ context.Context, _ []byte, headers map[string]interface{}) error {
				gotHeaders = headers
				return tt.handlerErr
			}, logger.NewNop())
			ack := &fakeAcknowledger{}
			d := amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, RoutingKey: "student.removed", Body: []byte("{}")}

			// Act
			c.handle(context.Background(), AuditQueue, d)

			// Assert
			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, !tt.wantAck, ack.nacked)
			assert.Equal(t, tt.wantRequeued, ack.requeued)
			assert.Equal(t, "student.removed", gotHeaders[HeaderEventType])
		})
	}
}
