package student

import (
	"context"
	"fmt"
	"time"

	"github.com/DioGolang/lifthub/internal/application/port/outbound"
	"github.com/DioGolang/lifthub/internal/domain/entity"
	"github.com/DioGolang/lifthub/pkg/events"
)

type UpdateUseCaseImpl struct {
	UnitOfWork outbound.UnitOfWork
	Cache      outbound.StudentCache
}

func NewUpdateUseCase(uow outbound.UnitOfWork, cache outbound.StudentCache) *UpdateUseCaseImpl {
	if cache == nil {
		cache = nopCache{}
	}
	return &UpdateUseCaseImpl{UnitOfWork: uow, Cache: cache}
}

func (uc *UpdateUseCaseImpl) Execute(ctx context.Context, input UpdateInput) (StudentOutput, error) {
	current, err := entity.ParseCPF(input.CurrentCPF)
	if err != nil {
		return StudentOutput{}, err
	}
	next, err := entity.ParseCPF(input.NewCPF)
	if err != nil {
		return StudentOutput{}, err
	}

	var updated *entity.Student
	err = uc.UnitOfWork.Do(ctx, func(provider outbound.RepositoryProvider) error {
		repo := provider.Student()

		student, err := repo.FindByCPF(ctx, current)
		if err != nil {
			return fmt.Errorf("find student: %w", err)
		}

		if next != current {
			exists, err := repo.ExistsByCPF(ctx, next)
			if err != nil {
				return fmt.Errorf("check cpf uniqueness: %w", err)
			}
			if exists {
				return entity.ErrDuplicateCPF
			}
		}

		if err := student.ChangeCPF(next, time.Now()); err != nil {
			return err
		}
		if err := repo.Update(ctx, student); err != nil {
			return fmt.Errorf("update student: %w", err)
		}

		updated = student
		return appendEvent(ctx, repo, student.ID().String(), events.NewStudentEvent(events.StudentCPFChanged, events.StudentPayload{
			StudentID:   student.ID().String(),
			CPF:         student.CPF(),
			PreviousCPF: current,
			OccurredAt:  student.UpdatedAt(),
		}))
	})
	if err != nil {
		return StudentOutput{}, err
	}

	uc.Cache.Invalidate(ctx, current, next)
	return toOutput(updated), nil
}
