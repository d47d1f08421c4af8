package events

import "context"

type Event interface {
	GetName() string
	GetPayload() interface{}
}

// EventDispatcher publishes already-encoded events to the broker.
type EventDispatcher interface {
	DispatchRaw(ctx context.Context, topic string, payload []byte, headers map[string]string) error
}
