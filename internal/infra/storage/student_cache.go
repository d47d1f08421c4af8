package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DioGolang/lifthub/internal/domain/entity"
	"github.com/DioGolang/lifthub/pkg/logger"
	"github.com/DioGolang/lifthub/pkg/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const (
	cacheType = "student"
	keyPrefix = "student:cpf:"
	genPrefix = "student:gen:"

	// generationTTL outlives any in-flight read by a wide margin.
	generationTTL = 24 * time.Hour
)

var errStaleFill = errors.New("student cache: generation moved")

type cachedStudent struct {
	ID        uuid.UUID `json:"id"`
	CPF       string    `json:"cpf"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type lookup struct {
	raw   []byte
	token uint64
}

// RedisStudentCache caches students by normalized CPF. Redis failures are
// logged and reported as misses; a circuit breaker stops calling Redis while
// it is unhealthy.
//
// Every CPF has a generation counter that Invalidate increments. Get hands
// out the generation (plus one, so zero means unknown) as the fill token and
// Set writes under WATCH only while the counter still matches.
type RedisStudentCache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker
	logger  logger.Logger
	metrics metrics.Metrics
}

func NewRedisStudentCache(client redis.UniversalClient, ttl time.Duration, log logger.Logger, m metrics.Metrics) *RedisStudentCache {
	settings := breakerSettings("redis-student-cache")
	settings.IsSuccessful = ignoreCallerCancellation
	return &RedisStudentCache{
		client:  client,
		ttl:     ttl,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  log,
		metrics: m,
	}
}

// NewBreaker trips after five consecutive failures and half-opens after 30s.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(breakerSettings(name))
}

func breakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

// ignoreCallerCancellation keeps a cancelled or expired request context from
// counting against Redis health.
func ignoreCallerCancellation(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func key(cpf string) string {
	return keyPrefix + cpf
}

func genKey(cpf string) string {
	return genPrefix + cpf
}

func (c *RedisStudentCache) Get(ctx context.Context, cpf string) (*entity.Student, uint64, bool) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		pipe := c.client.Pipeline()
		genCmd := pipe.Get(ctx, genKey(cpf))
		valCmd := pipe.Get(ctx, key(cpf))
		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}

		gen, err := genCmd.Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}
		raw, err := valCmd.Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}
		return lookup{raw: raw, token: uint64(gen) + 1}, nil
	})
	if err != nil {
		c.logger.Warn(ctx, "student cache read failed", logger.String("cpf", cpf), logger.WithError(err))
		c.metrics.IncCacheMiss(cacheType)
		return nil, 0, false
	}

	found := res.(lookup)
	if found.raw == nil {
		c.metrics.IncCacheMiss(cacheType)
		return nil, found.token, false
	}

	var cached cachedStudent
	if err := json.Unmarshal(found.raw, &cached); err != nil {
		c.logger.Warn(ctx, "discarding corrupt cache entry", logger.String("cpf", cpf), logger.WithError(err))
		c.Invalidate(ctx, cpf)
		c.metrics.IncCacheMiss(cacheType)
		return nil, 0, false
	}

	c.metrics.IncCacheHit(cacheType)
	return entity.RestoreStudent(cached.ID, cached.CPF, cached.CreatedAt, cached.UpdatedAt), found.token, true
}

func (c *RedisStudentCache) Set(ctx context.Context, student *entity.Student, token uint64) {
	if token == 0 {
		return
	}
	cpf := student.CPF()
	raw, err := json.Marshal(cachedStudent{
		ID:        student.ID(),
		CPF:       cpf,
		CreatedAt: student.CreatedAt(),
		UpdatedAt: student.UpdatedAt(),
	})
	if err != nil {
		c.logger.Error(ctx, "encode cache entry", logger.WithError(err))
		return
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		err := c.client.Watch(ctx, func(tx *redis.Tx) error {
			gen, err := tx.Get(ctx, genKey(cpf)).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if uint64(gen)+1 != token {
				return errStaleFill
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key(cpf), raw, c.ttl)
				return nil
			})
			return err
		}, genKey(cpf))
		if errors.Is(err, errStaleFill) || errors.Is(err, redis.TxFailedErr) {
			c.logger.Debug(ctx, "skipping stale cache fill", logger.String("cpf", cpf))
			return nil, nil
		}
		return nil, err
	})
	if err != nil {
		c.logger.Warn(ctx, "student cache write failed", logger.String("cpf", cpf), logger.WithError(err))
	}
}

// Invalidate bumps the generation of every CPF and drops its entry in one
// MULTI block.
func (c *RedisStudentCache) Invalidate(ctx context.Context, cpfs ...string) {
	if len(cpfs) == 0 {
		return
	}
	keys := make([]string, len(cpfs))
	for i, cpf := range cpfs {
		keys[i] = key(cpf)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, cpf := range cpfs {
				pipe.Incr(ctx, genKey(cpf))
				pipe.Expire(ctx, genKey(cpf), generationTTL)
			}
			pipe.Del(ctx, keys...)
			return nil
		})
		return nil, err
	})
	if err != nil {
		c.logger.Warn(ctx, "student cache invalidation failed",
			logger.String("keys", fmt.Sprint(keys)),
			logger.WithError(err),
		)
	}
}
