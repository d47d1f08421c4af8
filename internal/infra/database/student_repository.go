package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/DioGolang/lifthub/internal/application/port/outbound"
	"github.com/DioGolang/lifthub/internal/domain/entity"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type StudentRepositoryImpl struct {
	Db *sql.DB
	*Queries
}

func NewStudentRepository(db *sql.DB) *StudentRepositoryImpl {
	return &StudentRepositoryImpl{Db: db, Queries: New(db)}
}

func (r *StudentRepositoryImpl) Save(ctx context.Context, student *entity.Student) error {
	err := r.CreateStudent(ctx, CreateStudentParams{
		ID:        student.ID(),
		Cpf:       student.CPF(),
		CreatedAt: student.CreatedAt(),
		UpdatedAt: student.UpdatedAt(),
	})
	return translate(err)
}

func (r *StudentRepositoryImpl) FindByCPF(ctx context.Context, cpf string) (*entity.Student, error) {
	row, err := r.GetStudentByCPF(ctx, cpf)
	if err != nil {
		return nil, translate(err)
	}
	return toEntity(row), nil
}

func (r *StudentRepositoryImpl) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	return r.StudentExists(ctx, cpf)
}

func (r *StudentRepositoryImpl) List(ctx context.Context) ([]*entity.Student, error) {
	rows, err := r.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	students := make([]*entity.Student, len(rows))
	for i, row := range rows {
		students[i] = toEntity(row)
	}
	return students, nil
}

func (r *StudentRepositoryImpl) Update(ctx context.Context, student *entity.Student) error {
	affected, err := r.UpdateStudentCPF(ctx, UpdateStudentCPFParams{
		ID:        student.ID(),
		Cpf:       student.CPF(),
		UpdatedAt: student.UpdatedAt(),
	})
	if err != nil {
		return translate(err)
	}
	if affected == 0 {
		return entity.ErrStudentNotFound
	}
	return nil
}

func (r *StudentRepositoryImpl) DeleteByCPF(ctx context.Context, cpf string) (*entity.Student, error) {
	row, err := r.DeleteStudentByCPF(ctx, cpf)
	if err != nil {
		return nil, translate(err)
	}
	return toEntity(row), nil
}

func (r *StudentRepositoryImpl) SaveOutboxEvent(ctx context.Context, event outbound.OutboxEvent) error {
	return r.InsertOutboxEvent(ctx, InsertOutboxEventParams{
		ID:           event.ID,
		AggregateID:  event.AggregateID,
		EventType:    event.EventType,
		EventVersion: event.EventVersion,
		Payload:      event.Payload,
		Topic:        event.Topic,
		TraceContext: event.TraceContext,
	})
}

// translate maps driver errors onto domain errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrStudentNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return entity.ErrDuplicateCPF
	}
	return err
}

func toEntity(row Student) *entity.Student {
	return entity.RestoreStudent(row.ID, row.Cpf, row.CreatedAt.UTC(), row.UpdatedAt.UTC())
}
