package event

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DioGolang/lifthub/pkg/logger"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func countingHandler(errs ...error) (MessageHandler, *int) {
	calls := 0
	return func(context.Context, []byte, map[string]interface{}) error {
		calls++
		if calls <= len(errs) {
			return errs[calls-1]
		}
		return nil
	}, &calls
}

func TestWrapIdempotency(t *testing.T) {
	tests := []struct {
		name      string
		headers   map[string]interface{}
		wantKey   string
		claimed   bool
		storeErr  error
		handleErr error
		wantCalls int
		wantErr   bool
		wantDel   bool
	}{
		{name: "first delivery runs handler", headers: map[string]interface{}{HeaderEventID: "e-1"}, wantKey: "dedup:audit:e-1", claimed: true, wantCalls: 1},
		{name: "duplicate is dropped", headers: map[string]interface{}{HeaderEventID: "e-1"}, wantKey: "dedup:audit:e-1", claimed: false, wantCalls: 0},
		{name: "store down fails closed", headers: map[string]interface{}{HeaderEventID: "e-1"}, wantKey: "dedup:audit:e-1", storeErr: errors.New("dial tcp"), wantCalls: 0, wantErr: true},
		{name: "handler failure releases key", headers: map[string]interface{}{HeaderEventID: "e-2"}, wantKey: "dedup:audit:e-2", claimed: true, handleErr: errors.New("boom"), wantCalls: 1, wantErr: true, wantDel: true},
		{name: "missing id falls back to body hash", headers: map[string]interface{}{}, wantKey: fmt.Sprintf("dedup:audit:hash:%x", sha256Of("{}")), claimed: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			store := new(mockStore)
			store.On("SetNX", mock.Anything, tt.wantKey, "processing", time.Hour).Return(tt.claimed, tt.storeErr)
			if tt.wantDel {
				store.On("Del", mock.Anything, tt.wantKey).Return(nil)
			}
			next, calls := countingHandler(tt.handleErr)
			h := WrapIdempotency(logger.NewNop(), store, "audit", time.Hour, next)

			// Act
			err := h(context.Background(), []byte("{}"), tt.headers)

			// Assert
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.wantCalls, *calls)
			store.AssertExpectations(t)
		})
	}
}

func TestWrapExponentialBackoff(t *testing.T) {
	transient := errors.New("transient")
	permanent := fmt.Errorf("%w: bad body", ErrPermanent)

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
		wantFinal int
	}{
		{name: "succeeds first time", wantCalls: 1},
		{name: "recovers after transient failures", errs: []error{transient, transient}, wantCalls: 3},
		{name: "gives up after max retries", errs: []error{transient, transient, transient, transient}, wantCalls: 3, wantErr: transient, wantFinal: 1},
		{name: "permanent failure is not retried", errs: []error{permanent}, wantCalls: 1, wantErr: ErrPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newEventMetrics()
			next, calls := countingHandler(tt.errs...)
			h := WrapExponentialBackoff(logger.NewNop(), m, "audit", 2, time.Millisecond, next)

			err := h(context.Background(), nil, nil)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, *calls)
			assert.Len(t, m.useCases["audit_final_failure"], tt.wantFinal)
		})
	}
}

func TestWrapExponentialBackoff_StopsOnCancel(t *testing.T) {
	next, calls := countingHandler(errors.New("a"), errors.New("b"))
	h := WrapExponentialBackoff(logger.NewNop(), newEventMetrics(), "audit", 5, time.Hour, next)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h(ctx, nil, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, *calls)
}

func TestWrapResilientConsumer(t *testing.T) {
	// Arrange
	m := newEventMetrics()
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "audit",
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 2
		},
		Timeout: time.Minute,
	})
	failing := errors.New("downstream")
	permanent := fmt.Errorf("%w: bad body", ErrPermanent)
	next, calls := countingHandler(permanent, failing, failing)
	h := WrapResilientConsumer(m, "audit", time.Second, cb, next)

	// Act
	errPermanent := h(context.Background(), nil, nil)
	errFirst := h(context.Background(), nil, nil)
	errSecond := h(context.Background(), nil, nil)
	errOpen := h(context.Background(), nil, nil)

	// Assert
	assert.ErrorIs(t, errPermanent, ErrPermanent)
	assert.ErrorIs(t, errFirst, failing)
	assert.ErrorIs(t, errSecond, failing)
	assert.ErrorIs(t, errOpen, gobreaker.ErrOpenState)
	assert.Equal(t, 3, *calls)
	assert.Equal(t, []bool{false, false, false, false}, m.useCases["audit"])
}
