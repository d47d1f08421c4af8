package otel

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// ExtractContextToJSON serializes the propagation fields of ctx so they can
// be stored next to an outbox row.
func ExtractContextToJSON(ctx context.Context) []byte {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	b, err := json.Marshal(carrier)
	if err != nil {
		return []byte("{}")
	}
	return b
}

// InjectContextFromJSON restores what ExtractContextToJSON stored. Empty or
// unreadable data leaves parentCtx untouched.
func InjectContextFromJSON(parentCtx context.Context, data []byte) context.Context {
	if len(data) == 0 {
		return parentCtx
	}

	carrier := propagation.MapCarrier{}
	if err := json.Unmarshal(data, &carrier); err != nil {
		return parentCtx
	}

	return otel.GetTextMapPropagator().Extract(parentCtx, carrier)
}
