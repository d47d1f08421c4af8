package student

import (
	"context"
	"fmt"
	"time"

	"github.com/DioGolang/lifthub/internal/application/port/outbound"
	"github.com/DioGolang/lifthub/internal/domain/entity"
	"github.com/DioGolang/lifthub/pkg/events"
)

type RegisterUseCaseImpl struct {
	UnitOfWork outbound.UnitOfWork
}

func NewRegisterUseCase(uow outbound.UnitOfWork) *RegisterUseCaseImpl {
	return &RegisterUseCaseImpl{UnitOfWork: uow}
}

func (uc *RegisterUseCaseImpl) Execute(ctx context.Context, input RegisterInput) (StudentOutput, error) {
	student, err := entity.NewStudent(input.CPF, time.Now())
	if err != nil {
		return StudentOutput{}, err
	}

	err = uc.UnitOfWork.Do(ctx, func(provider outbound.RepositoryProvider) error {
		repo := provider.Student()

		exists, err := repo.ExistsByCPF(ctx, student.CPF())
		if err != nil {
			return fmt.Errorf("check cpf uniqueness: %w", err)
		}
		if exists {
			return entity.ErrDuplicateCPF
		}

		if err := repo.Save(ctx, student); err != nil {
			return fmt.Errorf("save student: %w", err)
		}

		return appendEvent(ctx, repo, student.ID().String(), events.NewStudentEvent(events.StudentRegistered, events.StudentPayload{
			StudentID:  student.ID().String(),
			CPF:        student.CPF(),
			OccurredAt: student.CreatedAt(),
		}))
	})
	if err != nil {
		return StudentOutput{}, err
	}

	return toOutput(student), nil
}
