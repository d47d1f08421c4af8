package student

import (
	"context"
	"sync"
	"time"

	"github.com/DioGolang/lifthub/internal/application/port/outbound"
	"github.com/DioGolang/lifthub/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, cpf string) (*entity.Student, uint64, bool) {
	args := m.Called(ctx, cpf)
	s, _ := args.Get(0).(*entity.Student)
	return s, args.Get(1).(uint64), args.Bool(2)
}

func (m *mockCache) Set(ctx context.Context, student *entity.Student, token uint64) {
	m.Called(ctx, student, token)
}

func (m *mockCache) Invalidate(ctx context.Context, cpfs ...string) {
	m.Called(ctx, cpfs)
}

// generationCache mirrors the Redis cache contract in memory: Invalidate
// bumps a per-CPF generation and Set only fills while it is unchanged.
type generationCache struct {
	mu      sync.Mutex
	entries map[string]*entity.Student
	gens    map[string]uint64
}

func newGenerationCache() *generationCache {
	return &generationCache{entries: map[string]*entity.Student{}, gens: map[string]uint64{}}
}

func (c *generationCache) Get(_ context.Context, cpf string) (*entity.Student, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[cpf]
	return s, c.gens[cpf] + 1, ok
}

func (c *generationCache) Set(_ context.Context, student *entity.Student, token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == 0 || c.gens[student.CPF()]+1 != token {
		return
	}
	c.entries[student.CPF()] = student
}

func (c *generationCache) Invalidate(_ context.Context, cpfs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cpf := range cpfs {
		c.gens[cpf]++
		delete(c.entries, cpf)
	}
}

// interleavingRepository runs between after every FindByCPF read, before the
// caller sees the result.
type interleavingRepository struct {
	outbound.StudentRepository
	between func()
}

func (r *interleavingRepository) FindByCPF(ctx context.Context, cpf string) (*entity.Student, error) {
	s, err := r.StudentRepository.FindByCPF(ctx, cpf)
	if r.between != nil {
		between := r.between
		r.between = nil
		between()
	}
	return s, err
}

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) RecordUseCaseExecution(useCaseName string, success bool, duration time.Duration) {
	m.Called(useCaseName, success, duration)
}
func (m *mockMetrics) RecordRequestRejected(kind string) { m.Called(kind) }
func (m *mockMetrics) RecordStudentEvent(eventType string, status string) {
	m.Called(eventType, status)
}
func (m *mockMetrics) ObserveHTTPRequestDuration(a, b, c string, d float64) { m.Called(a, b, c, d) }
func (m *mockMetrics) IncRateLimited(path string)                           { m.Called(path) }
func (m *mockMetrics) IncCacheHit(cacheType string)                         { m.Called(cacheType) }
func (m *mockMetrics) IncCacheMiss(cacheType string)                        { m.Called(cacheType) }
func (m *mockMetrics) IncOutboxEventsProcessed(status string)               { m.Called(status) }
