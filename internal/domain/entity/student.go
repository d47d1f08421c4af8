package entity

import (
	"strings"
	"time"

	"github.com/DioGolang/lifthub/pkg/cpf"
	"github.com/google/uuid"
)

type Student struct {
	id        uuid.UUID
	cpf       string
	createdAt time.Time
	updatedAt time.Time
}

func NewStudent(rawCPF string, now time.Time) (*Student, error) {
	normalized, err := ParseCPF(rawCPF)
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Student{
		id:        uuid.New(),
		cpf:       normalized,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// RestoreStudent rebuilds a Student from persisted state without validation.
func RestoreStudent(id uuid.UUID, cpf string, createdAt, updatedAt time.Time) *Student {
	return &Student{
		id:        id,
		cpf:       cpf,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ParseCPF returns the normalized form of raw or the reason it was rejected.
func ParseCPF(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrCPFRequired
	}
	if !cpf.IsValid(raw) {
		return "", ErrInvalidCPF
	}
	return cpf.Normalize(raw), nil
}

func (s *Student) ChangeCPF(raw string, now time.Time) error {
	normalized, err := ParseCPF(raw)
	if err != nil {
		return err
	}
	s.cpf = normalized
	s.updatedAt = now.UTC()
	return nil
}

func (s *Student) ID() uuid.UUID {
	return s.id
}

func (s *Student) CPF() string {
	return s.cpf
}

func (s *Student) FormattedCPF() string {
	return cpf.Format(s.cpf)
}

func (s *Student) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Student) UpdatedAt() time.Time {
	return s.updatedAt
}
