package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/DioGolang/lifthub/internal/application/port/outbound"
	"github.com/google/uuid"
)

type PostgresOutbox struct {
	db *sql.DB
	q  *Queries
}

func NewPostgresOutbox(db *sql.DB) *PostgresOutbox {
	return &PostgresOutbox{db: db, q: New(db)}
}

// ClaimPending locks a batch with SKIP LOCKED and flips it to PROCESSING in a
// short transaction so that concurrent relays never publish the same row.
func (o *PostgresOutbox) ClaimPending(ctx context.Context, limit, maxAttempts int) ([]outbound.OutboxEvent, error) {
	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	qtx := o.q.WithTx(tx)

	rows, err := qtx.FetchPendingOutboxEvents(ctx, int32(limit), int32(maxAttempts))
	if err != nil {
		return nil, fmt.Errorf("fetch pending outbox events: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(rows))
	claimed := make([]outbound.OutboxEvent, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
		claimed[i] = outbound.OutboxEvent{
			ID:           row.ID,
			AggregateID:  row.AggregateID,
			EventType:    row.EventType,
			EventVersion: row.EventVersion,
			Payload:      row.Payload,
			Topic:        row.Topic,
			TraceContext: row.TraceContext,
		}
	}

	if err := qtx.MarkOutboxAsProcessing(ctx, ids); err != nil {
		return nil, fmt.Errorf("claim outbox events: %w", err)
	}
	return claimed, tx.Commit()
}

func (o *PostgresOutbox) MarkPublished(ctx context.Context, id uuid.UUID) error {
	return o.q.MarkOutboxAsPublished(ctx, id)
}

func (o *PostgresOutbox) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return o.q.MarkOutboxAsFailed(ctx, MarkOutboxAsFailedParams{
		ID:       id,
		ErrorMsg: sql.NullString{String: reason, Valid: reason != ""},
	})
}

func (o *PostgresOutbox) ResetStuck(ctx context.Context, olderThan time.Duration) error {
	return o.q.ResetStuckEvents(ctx, interval(olderThan))
}

func (o *PostgresOutbox) PurgePublished(ctx context.Context, olderThan time.Duration) error {
	return o.q.DeleteOldOutboxEvents(ctx, interval(olderThan))
}

func interval(d time.Duration) string {
	return fmt.Sprintf("%d seconds", int64(d/time.Second))
}

var _ outbound.OutboxStore = (*PostgresOutbox)(nil)
