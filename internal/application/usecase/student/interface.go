package student

import (
	"context"
)

type RegisterUseCase interface {
	Execute(ctx context.Context, input RegisterInput) (StudentOutput, error)
}

type ListUseCase interface {
	Execute(ctx context.Context) ([]StudentOutput, error)
}

type FindUseCase interface {
	Execute(ctx context.Context, input FindInput) (StudentOutput, error)
}

type UpdateUseCase interface {
	Execute(ctx context.Context, input UpdateInput) (StudentOutput, error)
}

type RemoveUseCase interface {
	Execute(ctx context.Context, input RemoveInput) error
}
