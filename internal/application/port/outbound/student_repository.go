package outbound

import (
	"context"

	"github.com/DioGolang/lifthub/internal/domain/entity"
	"github.com/google/uuid"
)

type OutboxEvent struct {
	ID           uuid.UUID
	AggregateID  string
	EventType    string
	EventVersion int32
	Payload      []byte
	Topic        string
	TraceContext []byte
}

// StudentRepository persists students keyed by normalized CPF.
// Lookups that miss return entity.ErrStudentNotFound; writes that collide on
// CPF return entity.ErrDuplicateCPF.
type StudentRepository interface {
	Save(ctx context.Context, student *entity.Student) error
	FindByCPF(ctx context.Context, cpf string) (*entity.Student, error)
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
	List(ctx context.Context) ([]*entity.Student, error)
	Update(ctx context.Context, student *entity.Student) error
	DeleteByCPF(ctx context.Context, cpf string) (*entity.Student, error)
	SaveOutboxEvent(ctx context.Context, event OutboxEvent) error
}
