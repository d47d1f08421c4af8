package student

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DioGolang/lifthub/internal/application/port/outbound"
	"github.com/DioGolang/lifthub/pkg/events"
	carrier "github.com/DioGolang/lifthub/pkg/otel"
	"github.com/google/uuid"
)

const eventVersion int32 = 1

// newOutboxEvent encodes evt for the outbox and captures the caller's trace
// context so the relay can continue the trace when it publishes.
func newOutboxEvent(ctx context.Context, aggregateID string, evt events.Event) (outbound.OutboxEvent, error) {
	payload, err := json.Marshal(evt.GetPayload())
	if err != nil {
		return outbound.OutboxEvent{}, fmt.Errorf("encode %s: %w", evt.GetName(), err)
	}
	return outbound.OutboxEvent{
		ID:           uuid.New(),
		AggregateID:  aggregateID,
		EventType:    evt.GetName(),
		EventVersion: eventVersion,
		Payload:      payload,
		Topic:        evt.GetName(),
		TraceContext: carrier.ExtractContextToJSON(ctx),
	}, nil
}

func appendEvent(ctx context.Context, repo outbound.StudentRepository, aggregateID string, evt events.Event) error {
	outboxEvent, err := newOutboxEvent(ctx, aggregateID, evt)
	if err != nil {
		return err
	}
	if err := repo.SaveOutboxEvent(ctx, outboxEvent); err != nil {
		return fmt.Errorf("save outbox event: %w", err)
	}
	return nil
}
