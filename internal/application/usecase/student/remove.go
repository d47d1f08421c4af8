package student

import (
	"context"
	"fmt"
	"time"

	"github.com/DioGolang/lifthub/internal/application/port/outbound"
	"github.com/DioGolang/lifthub/internal/domain/entity"
	"github.com/DioGolang/lifthub/pkg/events"
)

type RemoveUseCaseImpl struct {
	UnitOfWork outbound.UnitOfWork
	Cache      outbound.StudentCache
}

func NewRemoveUseCase(uow outbound.UnitOfWork, cache outbound.StudentCache) *RemoveUseCaseImpl {
	if cache == nil {
		cache = nopCache{}
	}
	return &RemoveUseCaseImpl{UnitOfWork: uow, Cache: cache}
}

func (uc *RemoveUseCaseImpl) Execute(ctx context.Context, input RemoveInput) error {
	cpf, err := entity.ParseCPF(input.CPF)
	if err != nil {
		return err
	}

	err = uc.UnitOfWork.Do(ctx, func(provider outbound.RepositoryProvider) error {
		repo := provider.Student()

		removed, err := repo.DeleteByCPF(ctx, cpf)
		if err != nil {
			return fmt.Errorf("delete student: %w", err)
		}

		return appendEvent(ctx, repo, removed.ID().String(), events.NewStudentEvent(events.StudentRemoved, events.StudentPayload{
			StudentID:  removed.ID().String(),
			CPF:        removed.CPF(),
			OccurredAt: time.Now().UTC(),
		}))
	})
	if err != nil {
		return err
	}

	uc.Cache.Invalidate(ctx, cpf)
	return nil
}
