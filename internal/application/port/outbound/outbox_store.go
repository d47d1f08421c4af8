package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxStore is the relay's view of the outbox: claim a batch, then record
// the outcome of each publish.
type OutboxStore interface {
	ClaimPending(ctx context.Context, limit, maxAttempts int) ([]OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	ResetStuck(ctx context.Context, olderThan time.Duration) error
	PurgePublished(ctx context.Context, olderThan time.Duration) error
}
