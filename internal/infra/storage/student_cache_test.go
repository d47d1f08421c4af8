package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DioGolang/lifthub/internal/domain/entity"
	"github.com/DioGolang/lifthub/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMetrics struct {
	hits, misses int
}

func (m *countingMetrics) RecordUseCaseExecution(string, bool, time.Duration)         {}
func (m *countingMetrics) RecordRequestRejected(string)                               {}
func (m *countingMetrics) RecordStudentEvent(string, string)                          {}
func (m *countingMetrics) ObserveHTTPRequestDuration(string, string, string, float64) {}
func (m *countingMetrics) IncRateLimited(string)                                      {}
func (m *countingMetrics) IncCacheHit(string)                                         { m.hits++ }
func (m *countingMetrics) IncCacheMiss(string)                                        { m.misses++ }
func (m *countingMetrics) IncOutboxEventsProcessed(string)                            {}

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisStudentCache_DegradesToMissWhenRedisIsDown(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	m := &countingMetrics{}
	cache := NewRedisStudentCache(client, time.Minute, logger.NewNop(), m)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		s, token, ok := cache.Get(ctx, "11144477735")
		assert.False(t, ok)
		assert.Nil(t, s)
		assert.Zero(t, token)
	}

	assert.Equal(t, 7, m.misses)
	assert.Equal(t, 0, m.hits)
	assert.Equal(t, gobreaker.StateOpen, cache.breaker.State())
}

func TestRedisStudentCache_SetAndInvalidateNeverPanicWhenRedisIsDown(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	cache := NewRedisStudentCache(client, time.Minute, logger.NewNop(), &countingMetrics{})
	s, err := entity.NewStudent("11144477735", time.Now())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		cache.Set(context.Background(), s, 1)
		cache.Set(context.Background(), s, 0)
		cache.Invalidate(context.Background(), "11144477735", "52998224725")
		cache.Invalidate(context.Background())
	})
}

func TestRedisStudentCache_CallerCancellationKeepsBreakerClosed(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	m := &countingMetrics{}
	cache := NewRedisStudentCache(client, time.Minute, logger.NewNop(), m)
	s, err := entity.NewStudent("11144477735", time.Now())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 10; i++ {
		_, _, ok := cache.Get(ctx, s.CPF())
		assert.False(t, ok)
		cache.Set(ctx, s, 1)
		cache.Invalidate(ctx, s.CPF())
	}

	assert.Equal(t, 10, m.misses)
	assert.Equal(t, gobreaker.StateClosed, cache.breaker.State())
}

func TestIgnoreCallerCancellation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: true},
		{name: "canceled", err: context.Canceled, want: true},
		{name: "deadline", err: fmt.Errorf("dial: %w", context.DeadlineExceeded), want: true},
		{name: "redis failure", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ignoreCallerCancellation(tt.err))
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "student:cpf:11144477735", key("11144477735"))
	assert.Equal(t, "student:gen:11144477735", genKey("11144477735"))
}
