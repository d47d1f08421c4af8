package event

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"
)

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) DispatchRaw(ctx context.Context, topic string, payload []byte, headers map[string]string) error {
	args := m.Called(ctx, topic, payload, headers)
	return args.Error(0)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, expiration)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type fakePublisher struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (p *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.exchange, p.key, p.msg = exchange, key, msg
	return p.err
}

type fakeAcknowledger struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (a *fakeAcknowledger) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

func (a *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

type eventMetrics struct {
	mu       sync.Mutex
	outbox   map[string]int
	events   map[string]int
	useCases map[string][]bool
}

func newEventMetrics() *eventMetrics {
	return &eventMetrics{outbox: map[string]int{}, events: map[string]int{}, useCases: map[string][]bool{}}
}

func (m *eventMetrics) RecordUseCaseExecution(name string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.useCases[name] = append(m.useCases[name], success)
}

func (m *eventMetrics) RecordStudentEvent(eventType, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[eventType+"/"+status]++
}

func (m *eventMetrics) IncOutboxEventsProcessed(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outbox[status]++
}

func (m *eventMetrics) RecordRequestRejected(string)                               {}
func (m *eventMetrics) ObserveHTTPRequestDuration(string, string, string, float64) {}
func (m *eventMetrics) IncRateLimited(string)                                      {}
func (m *eventMetrics) IncCacheHit(string)                                         {}
func (m *eventMetrics) IncCacheMiss(string)                                        {}
