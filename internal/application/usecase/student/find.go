package student

import (
	"context"
	"fmt"

	"github.com/DioGolang/lifthub/internal/application/port/outbound"
	"github.com/DioGolang/lifthub/internal/domain/entity"
)

type FindUseCaseImpl struct {
	Repo  outbound.StudentRepository
	Cache outbound.StudentCache
}

func NewFindUseCase(repo outbound.StudentRepository, cache outbound.StudentCache) *FindUseCaseImpl {
	if cache == nil {
		cache = nopCache{}
	}
	return &FindUseCaseImpl{Repo: repo, Cache: cache}
}

func (uc *FindUseCaseImpl) Execute(ctx context.Context, input FindInput) (StudentOutput, error) {
	cpf, err := entity.ParseCPF(input.CPF)
	if err != nil {
		return StudentOutput{}, err
	}

	cached, token, ok := uc.Cache.Get(ctx, cpf)
	if ok {
		return toOutput(cached), nil
	}

	student, err := uc.Repo.FindByCPF(ctx, cpf)
	if err != nil {
		return StudentOutput{}, fmt.Errorf("find student: %w", err)
	}
	uc.Cache.Set(ctx, student, token)

	return toOutput(student), nil
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) (*entity.Student, uint64, bool) { return nil, 0, false }
func (nopCache) Set(context.Context, *entity.Student, uint64)                {}
func (nopCache) Invalidate(context.Context, ...string)                       {}
