package student

import (
	"time"

	"github.com/DioGolang/lifthub/internal/domain/entity"
)

// Input

type RegisterInput struct {
	CPF string `json:"cpf" validate:"required"`
}

type FindInput struct {
	CPF string
}

type UpdateInput struct {
	CurrentCPF string `json:"-"`
	NewCPF     string `json:"new_cpf" validate:"required"`
}

type RemoveInput struct {
	CPF string
}

// Output

type StudentOutput struct {
	ID           string    `json:"id"`
	CPF          string    `json:"cpf"`
	FormattedCPF string    `json:"formatted_cpf"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toOutput(s *entity.Student) StudentOutput {
	return StudentOutput{
		ID:           s.ID().String(),
		CPF:          s.CPF(),
		FormattedCPF: s.FormattedCPF(),
		CreatedAt:    s.CreatedAt(),
		UpdatedAt:    s.UpdatedAt(),
	}
}
