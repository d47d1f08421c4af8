package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/DioGolang/lifthub/internal/application/port/outbound"
	"github.com/DioGolang/lifthub/internal/domain/entity"
	"github.com/google/uuid"
)

type studentRecord struct {
	id        uuid.UUID
	cpf       string
	createdAt time.Time
	updatedAt time.Time
}

type outboxStatus string

const (
	outboxPending    outboxStatus = "PENDING"
	outboxProcessing outboxStatus = "PROCESSING"
	outboxPublished  outboxStatus = "PUBLISHED"
	outboxFailed     outboxStatus = "FAILED"
)

type outboxEntry struct {
	event       outbound.OutboxEvent
	status      outboxStatus
	attempts    int
	errorMsg    string
	processedAt time.Time
}

type memoryState struct {
	students map[string]studentRecord
	outbox   []outboxEntry
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		students: make(map[string]studentRecord, len(s.students)),
		outbox:   make([]outboxEntry, len(s.outbox)),
	}
	for k, v := range s.students {
		c.students[k] = v
	}
	copy(c.outbox, s.outbox)
	return c
}

// MemoryStore keeps students and their outbox in process memory. It
// implements outbound.UnitOfWork and outbound.OutboxStore; a unit of work runs
// on a copy of the state that replaces the live state only when fn succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memoryState{students: make(map[string]studentRecord)},
		now:   time.Now,
	}
}

func (m *MemoryStore) Do(ctx context.Context, fn func(provider outbound.RepositoryProvider) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := m.state.clone()
	if err := fn(&memoryProvider{repo: &memoryRepository{tx: tx}}); err != nil {
		return err
	}
	m.state = tx
	return nil
}

// Repository returns a repository whose calls each run in their own implicit transaction.
func (m *MemoryStore) Repository() outbound.StudentRepository {
	return &memoryRepository{store: m}
}

// OutboxEvents returns a copy of the events appended so far.
func (m *MemoryStore) OutboxEvents() []outbound.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]outbound.OutboxEvent, len(m.state.outbox))
	for i, e := range m.state.outbox {
		out[i] = e.event
	}
	return out
}

func (m *MemoryStore) ClaimPending(ctx context.Context, limit, maxAttempts int) ([]outbound.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var claimed []outbound.OutboxEvent
	for i := range m.state.outbox {
		if len(claimed) == limit {
			break
		}
		e := &m.state.outbox[i]
		if e.status == outboxPending || (e.status == outboxFailed && e.attempts < maxAttempts) {
			e.status = outboxProcessing
			e.processedAt = m.now()
			claimed = append(claimed, e.event)
		}
	}
	return claimed, nil
}

func (m *MemoryStore) MarkPublished(ctx context.Context, id uuid.UUID) error {
	return m.updateOutbox(id, func(e *outboxEntry) {
		e.status = outboxPublished
		e.errorMsg = ""
	})
}

func (m *MemoryStore) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return m.updateOutbox(id, func(e *outboxEntry) {
		e.status = outboxFailed
		e.attempts++
		e.errorMsg = reason
	})
}

func (m *MemoryStore) ResetStuck(ctx context.Context, olderThan time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-olderThan)
	for i := range m.state.outbox {
		e := &m.state.outbox[i]
		if e.status == outboxProcessing && e.processedAt.Before(cutoff) {
			e.status = outboxPending
		}
	}
	return nil
}

func (m *MemoryStore) PurgePublished(ctx context.Context, olderThan time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-olderThan)
	kept := m.state.outbox[:0]
	for _, e := range m.state.outbox {
		if e.status == outboxPublished && e.processedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, e)
	}
	m.state.outbox = kept
	return nil
}

func (m *MemoryStore) updateOutbox(id uuid.UUID, fn func(e *outboxEntry)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.state.outbox {
		if m.state.outbox[i].event.ID == id {
			fn(&m.state.outbox[i])
			m.state.outbox[i].processedAt = m.now()
			return nil
		}
	}
	return fmt.Errorf("outbox event %s: %w", id, sql.ErrNoRows)
}

type memoryProvider struct {
	repo *memoryRepository
}

func (p *memoryProvider) Student() outbound.StudentRepository {
	return p.repo
}

type memoryRepository struct {
	store *MemoryStore
	tx    *memoryState
}

func (r *memoryRepository) run(fn func(st *memoryState) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(r.store.state)
}

func (r *memoryRepository) Save(ctx context.Context, student *entity.Student) error {
	return r.run(func(st *memoryState) error {
		if _, ok := st.students[student.CPF()]; ok {
			return entity.ErrDuplicateCPF
		}
		st.students[student.CPF()] = toRecord(student)
		return nil
	})
}

func (r *memoryRepository) FindByCPF(ctx context.Context, cpf string) (*entity.Student, error) {
	var found *entity.Student
	err := r.run(func(st *memoryState) error {
		rec, ok := st.students[cpf]
		if !ok {
			return entity.ErrStudentNotFound
		}
		found = rec.toEntity()
		return nil
	})
	return found, err
}

func (r *memoryRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	var exists bool
	err := r.run(func(st *memoryState) error {
		_, exists = st.students[cpf]
		return nil
	})
	return exists, err
}

func (r *memoryRepository) List(ctx context.Context) ([]*entity.Student, error) {
	var records []studentRecord
	_ = r.run(func(st *memoryState) error {
		records = make([]studentRecord, 0, len(st.students))
		for _, rec := range st.students {
			records = append(records, rec)
		}
		return nil
	})

	sort.Slice(records, func(i, j int) bool {
		if records[i].createdAt.Equal(records[j].createdAt) {
			return records[i].cpf < records[j].cpf
		}
		return records[i].createdAt.After(records[j].createdAt)
	})

	students := make([]*entity.Student, len(records))
	for i, rec := range records {
		students[i] = rec.toEntity()
	}
	return students, nil
}

func (r *memoryRepository) Update(ctx context.Context, student *entity.Student) error {
	return r.run(func(st *memoryState) error {
		oldCPF := ""
		for cpf, rec := range st.students {
			if rec.id == student.ID() {
				oldCPF = cpf
				break
			}
		}
		if oldCPF == "" {
			return entity.ErrStudentNotFound
		}
		if rec, ok := st.students[student.CPF()]; ok && rec.id != student.ID() {
			return entity.ErrDuplicateCPF
		}
		delete(st.students, oldCPF)
		st.students[student.CPF()] = toRecord(student)
		return nil
	})
}

func (r *memoryRepository) DeleteByCPF(ctx context.Context, cpf string) (*entity.Student, error) {
	var removed *entity.Student
	err := r.run(func(st *memoryState) error {
		rec, ok := st.students[cpf]
		if !ok {
			return entity.ErrStudentNotFound
		}
		delete(st.students, cpf)
		removed = rec.toEntity()
		return nil
	})
	return removed, err
}

func (r *memoryRepository) SaveOutboxEvent(ctx context.Context, event outbound.OutboxEvent) error {
	return r.run(func(st *memoryState) error {
		st.outbox = append(st.outbox, outboxEntry{event: event, status: outboxPending})
		return nil
	})
}

func toRecord(s *entity.Student) studentRecord {
	return studentRecord{id: s.ID(), cpf: s.CPF(), createdAt: s.CreatedAt(), updatedAt: s.UpdatedAt()}
}

func (rec studentRecord) toEntity() *entity.Student {
	return entity.RestoreStudent(rec.id, rec.cpf, rec.createdAt, rec.updatedAt)
}

var (
	_ outbound.UnitOfWork  = (*MemoryStore)(nil)
	_ outbound.OutboxStore = (*MemoryStore)(nil)
)
