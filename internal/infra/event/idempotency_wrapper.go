package event

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/DioGolang/lifthub/pkg/logger"
)

type IdempotencyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
}

// WrapIdempotency drops deliveries whose event id was already handled. The
// event id comes from the x-event-id header, falling back to a body hash.
// The guard fails closed: if the store is unreachable the message is retried.
func WrapIdempotency(
	log logger.Logger,
	store IdempotencyStore,
	handlerName string,
	ttl time.Duration,
	next MessageHandler,
) MessageHandler {
	return func(ctx context.Context, body []byte, headers map[string]interface{}) error {
		eventID := ""
		if v, ok := headers[HeaderEventID]; ok {
			eventID = fmt.Sprintf("%v", v)
		}
		if eventID == "" {
			eventID = fmt.Sprintf("hash:%x", sha256.Sum256(body))
		}

		key := fmt.Sprintf("dedup:%s:%s", handlerName, eventID)

		claimed, err := store.SetNX(ctx, key, "processing", ttl)
		if err != nil {
			log.Error(ctx, "idempotency store unavailable", logger.WithError(err))
			return fmt.Errorf("idempotency store unavailable: %w", err)
		}
		if !claimed {
			log.Info(ctx, "duplicate event dropped",
				logger.String("handler", handlerName),
				logger.String("event_id", eventID),
			)
			return nil
		}

		err = next(ctx, body, headers)
		if err != nil {
			log.Warn(ctx, "handler failed, releasing idempotency key",
				logger.String("key", key),
				logger.WithError(err),
			)
			if delErr := store.Del(ctx, key); delErr != nil {
				log.Error(ctx, "failed to release idempotency key",
					logger.String("key", key),
					logger.WithError(delErr),
				)
			}
		}
		return err
	}
}
