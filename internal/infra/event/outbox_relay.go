package event

import (
	"context"
	"strconv"
	"time"

	"github.com/DioGolang/lifthub/internal/application/port/outbound"
	"github.com/DioGolang/lifthub/pkg/events"
	"github.com/DioGolang/lifthub/pkg/logger"
	"github.com/DioGolang/lifthub/pkg/metrics"
	carrier "github.com/DioGolang/lifthub/pkg/otel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type RelayConfig struct {
	BatchSize      int
	Workers        int
	MaxAttempts    int
	PollInterval   time.Duration
	PublishTimeout time.Duration
	StuckAfter     time.Duration
	RetainFor      time.Duration
	RescueInterval time.Duration
}

func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		BatchSize:      100,
		Workers:        10,
		MaxAttempts:    5,
		PollInterval:   100 * time.Millisecond,
		PublishTimeout: 5 * time.Second,
		StuckAfter:     5 * time.Minute,
		RetainFor:      7 * 24 * time.Hour,
		RescueInterval: 5 * time.Minute,
	}
}

// OutboxRelay moves committed outbox rows to the broker.
type OutboxRelay struct {
	store      outbound.OutboxStore
	dispatcher events.EventDispatcher
	logger     logger.Logger
	metrics    metrics.Metrics
	config     RelayConfig
}

func NewOutboxRelay(store outbound.OutboxStore, disp events.EventDispatcher, log logger.Logger, m metrics.Metrics, cfg RelayConfig) *OutboxRelay {
	return &OutboxRelay{
		store:      store,
		dispatcher: disp,
		logger:     log,
		metrics:    m,
		config:     cfg,
	}
}

func (r *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.processBatch(ctx)
		}
	}
}

// processBatch claims one batch and publishes it with bounded concurrency.
// It returns the number of events claimed.
func (r *OutboxRelay) processBatch(ctx context.Context) int {
	claimed, err := r.store.ClaimPending(ctx, r.config.BatchSize, r.config.MaxAttempts)
	if err != nil {
		r.logger.Error(ctx, "failed to claim outbox batch", logger.WithError(err))
		return 0
	}
	if len(claimed) == 0 {
		return 0
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Workers)

	for _, evt := range claimed {
		g.Go(func() error {
			return r.publish(gCtx, evt)
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.Error(ctx, "outbox batch finished with errors", logger.WithError(err))
	}
	return len(claimed)
}

func (r *OutboxRelay) publish(ctx context.Context, evt outbound.OutboxEvent) error {
	ctx = carrier.InjectContextFromJSON(ctx, evt.TraceContext)
	ctx, span := otel.Tracer("outbox-relay").Start(ctx, "outbox.publish", trace.WithAttributes(
		attribute.String("messaging.destination", evt.Topic),
		attribute.String("messaging.message_id", evt.ID.String()),
	))
	defer span.End()

	pubCtx, cancel := context.WithTimeout(ctx, r.config.PublishTimeout)
	defer cancel()

	headers := map[string]string{
		HeaderEventID:      evt.ID.String(),
		HeaderEventType:    evt.EventType,
		HeaderEventVersion: strconv.FormatInt(int64(evt.EventVersion), 10),
		HeaderAggregateID:  evt.AggregateID,
	}

	// State updates must land even when the publish deadline expired.
	stateCtx := context.WithoutCancel(ctx)

	if err := r.dispatcher.DispatchRaw(pubCtx, evt.Topic, evt.Payload, headers); err != nil {
		span.RecordError(err)
		r.logger.Warn(ctx, "failed to publish outbox event",
			logger.String("event_id", evt.ID.String()),
			logger.String("topic", evt.Topic),
			logger.WithError(err),
		)
		r.metrics.IncOutboxEventsProcessed("failed")
		return r.store.MarkFailed(stateCtx, evt.ID, err.Error())
	}

	r.metrics.IncOutboxEventsProcessed("published")
	return r.store.MarkPublished(stateCtx, evt.ID)
}

// RunRescuer periodically requeues rows stuck in PROCESSING and purges old
// published rows.
func (r *OutboxRelay) RunRescuer(ctx context.Context) {
	ticker := time.NewTicker(r.config.RescueInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.rescue(ctx)
		}
	}
}

func (r *OutboxRelay) rescue(ctx context.Context) {
	if err := r.store.ResetStuck(ctx, r.config.StuckAfter); err != nil {
		r.logger.Error(ctx, "failed to reset stuck outbox events", logger.WithError(err))
	}
	if err := r.store.PurgePublished(ctx, r.config.RetainFor); err != nil {
		r.logger.Error(ctx, "outbox cleanup failed", logger.WithError(err))
	}
}
