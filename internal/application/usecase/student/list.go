package student

import (
	"context"
	"fmt"

	"github.com/DioGolang/lifthub/internal/application/port/outbound"
)

type ListUseCaseImpl struct {
	Repo outbound.StudentRepository
}

func NewListUseCase(repo outbound.StudentRepository) *ListUseCaseImpl {
	return &ListUseCaseImpl{Repo: repo}
}

// Execute returns every student, newest first.
func (uc *ListUseCaseImpl) Execute(ctx context.Context) ([]StudentOutput, error) {
	students, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	output := make([]StudentOutput, len(students))
	for i, s := range students {
		output[i] = toOutput(s)
	}
	return output, nil
}
