package event

import (
	"context"
	"errors"
	"time"

	"github.com/DioGolang/lifthub/pkg/logger"
	"github.com/DioGolang/lifthub/pkg/metrics"
)

// WrapExponentialBackoff retries next up to maxRetries times, doubling the
// wait each attempt. Permanent failures are returned immediately.
func WrapExponentialBackoff(
	log logger.Logger,
	m metrics.Metrics,
	handlerName string,
	maxRetries int,
	baseWait time.Duration,
	next MessageHandler,
) MessageHandler {
	return func(ctx context.Context, body []byte, headers map[string]interface{}) error {
		var err error
		for attempt := 0; attempt <= maxRetries; attempt++ {
			err = next(ctx, body, headers)
			if err == nil || errors.Is(err, ErrPermanent) {
				return err
			}
			if attempt == maxRetries {
				break
			}

			wait := baseWait << attempt
			log.Warn(ctx, "transient failure, retrying",
				logger.String("handler", handlerName),
				logger.Int("attempt", attempt+1),
				logger.String("wait", wait.String()),
				logger.WithError(err),
			)

			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}

		log.Error(ctx, "max retries reached, giving up",
			logger.String("handler", handlerName),
			logger.WithError(err),
		)
		m.RecordUseCaseExecution(handlerName+"_final_failure", false, 0)
		return err
	}
}
