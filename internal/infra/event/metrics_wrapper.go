package event

import (
	"context"
	"time"

	"github.com/DioGolang/lifthub/pkg/metrics"
	"github.com/sony/gobreaker"
)

// WrapResilientConsumer bounds next with a timeout and a circuit breaker and
// records its outcome. Permanent failures do not count against the breaker.
func WrapResilientConsumer(
	m metrics.Metrics,
	handlerName string,
	timeout time.Duration,
	cb *gobreaker.CircuitBreaker,
	next MessageHandler,
) MessageHandler {
	return func(ctx context.Context, body []byte, headers map[string]interface{}) error {
		start := time.Now()

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var permanent error
		_, err := cb.Execute(func() (interface{}, error) {
			err := next(ctx, body, headers)
			if isPermanent(err) {
				permanent = err
				return nil, nil
			}
			return nil, err
		})
		if permanent != nil {
			err = permanent
		}

		m.RecordUseCaseExecution(handlerName, err == nil, time.Since(start))
		return err
	}
}
